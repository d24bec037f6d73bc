package battle

import "fmt"

// Action is a reason to change the battle State.
type Action interface {
	isAction()
}

// UseAttack applies Attack from Attacker to Target.
type UseAttack struct {
	Attacker Ref
	Target   Ref
	Attack   Attack
}

// NextTurn hands the turn to the next living character, or records the
// winner if one side has been defeated.
type NextTurn struct{}

// Pass records that the current character skipped its action.
type Pass struct{}

func (UseAttack) isAction() {}
func (NextTurn) isAction()  {}
func (Pass) isAction()      {}

// ApplyAttack resolves a UseAttack. Damage clamps health at zero, healing
// clamps at max health, and player attacks spend shared mana. Any other
// action returns prev unchanged.
func ApplyAttack(a Action, prev *State) *State {
	use, ok := a.(UseAttack)
	if !ok {
		return prev
	}
	attacker, ok := prev.Character(use.Attacker)
	if !ok {
		return prev
	}
	target, ok := prev.Character(use.Target)
	if !ok {
		return prev
	}

	next := prev.clone()
	group := next.Side(use.Target.Side)
	hit := group[use.Target.Index]
	if use.Attack.Heal {
		hit.Health = min(hit.Health+use.Attack.Power, hit.MaxHealth)
		next.Log = fmt.Sprintf("%s uses %s on %s (+%d)", attacker.Name, use.Attack.Name, target.Name, hit.Health-target.Health)
	} else {
		hit.Health = max(hit.Health-use.Attack.Power, 0)
		next.Log = fmt.Sprintf("%s uses %s on %s (-%d)", attacker.Name, use.Attack.Name, target.Name, target.Health-hit.Health)
		if !hit.Alive() {
			next.Log += fmt.Sprintf(", %s falls", target.Name)
		}
	}
	group[use.Target.Index] = hit

	if use.Attacker.Side == Players {
		next.Mana = max(next.Mana-use.Attack.ManaCost, 0)
	}
	return next
}

// SkipTurn records a Pass in the log. Any other action returns prev.
func SkipTurn(a Action, prev *State) *State {
	if _, ok := a.(Pass); !ok {
		return prev
	}
	next := prev.clone()
	next.Log = fmt.Sprintf("%s waits", prev.Current().Name)
	return next
}

// AdvanceTurn resolves a NextTurn. If a side is wiped out the winner is set
// and the turn stays put. Otherwise the turn moves round-robin (players then
// enemies) to the next living character; wrapping past the end starts a new
// round and regenerates mana.
func AdvanceTurn(a Action, prev *State) *State {
	if _, ok := a.(NextTurn); !ok {
		return prev
	}

	next := prev.clone()
	if w := next.outcome(); w != Undecided {
		next.Winner = w
		next.Log = fmt.Sprintf("%s win", w)
		return next
	}

	order := next.turnOrder()
	pos := 0
	for i, ref := range order {
		if ref == prev.Turn {
			pos = i
			break
		}
	}

	for step := 1; step <= len(order); step++ {
		ref := order[(pos+step)%len(order)]
		c, _ := next.Character(ref)
		if !c.Alive() {
			continue
		}
		if pos+step >= len(order) {
			next.Round++
			next.Mana = min(next.Mana+next.ManaRegen, next.MaxMana)
		}
		next.Turn = ref
		next.Log = fmt.Sprintf("%s's turn", c.Name)
		break
	}
	return next
}
