package battle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/battle/internal/machine"
)

// Node names. The router and the nodes refer to each other only by these.
const (
	NodePlayerTurn = "PlayerTurn"
	NodeEnemyTurn  = "EnemyTurn"
	NodePostAttack = "PostAttack"
	NodeVictory    = "Victory"
	NodeDefeat     = "Defeat"
	NodeBattleOver = "BattleOver"
)

// Transition is a reason to change machine node.
type Transition struct {
	Reason string
}

// Control is the handle battle nodes receive.
type Control = machine.Control[*State, Action, Transition]

// ErrInvalidCommand is returned when a player command cannot be carried out.
var ErrInvalidCommand = errors.New("invalid command")

// TurnRouter picks the node for the State after a turn change: Victory or
// Defeat once a winner is set (falling back to BattleOver when those are not
// registered), otherwise PlayerTurn or EnemyTurn by whose turn it is.
func TurnRouter(_ string, state *State, _ Transition, available []string) string {
	var want string
	switch state.Winner {
	case PlayersWin:
		want = NodeVictory
	case EnemiesWin:
		want = NodeDefeat
	default:
		if state.Turn.Side == Players {
			return NodePlayerTurn
		}
		return NodeEnemyTurn
	}
	if !slices.Contains(available, want) && slices.Contains(available, NodeBattleOver) {
		return NodeBattleOver
	}
	return want
}

// PlayerTurn waits for a Command from the input source.
type PlayerTurn struct{}

func (*PlayerTurn) OnStateChanged(Control, *State) bool { return false }

func (*PlayerTurn) HandleFrame(Control, float64) error { return nil }

// HandleInput validates cmd against the current State, applies it and moves
// to PostAttack.
func (*PlayerTurn) HandleInput(c Control, cmd Command) error {
	state := c.StoreState()
	if cmd.Pass {
		c.ChangeStoreState(SkipTurn, Pass{})
		return c.TransitionTo(NodePostAttack)
	}

	use, err := resolveCommand(state, cmd)
	if err != nil {
		return err
	}
	c.ChangeStoreState(ApplyAttack, use)
	return c.TransitionTo(NodePostAttack)
}

func resolveCommand(state *State, cmd Command) (UseAttack, error) {
	attacker := state.Current()
	if cmd.Attack < 0 || cmd.Attack >= len(attacker.Attacks) {
		return UseAttack{}, fmt.Errorf("%w: %s has no attack %d", ErrInvalidCommand, attacker.Name, cmd.Attack+1)
	}
	atk := attacker.Attacks[cmd.Attack]
	if atk.ManaCost > state.Mana {
		return UseAttack{}, fmt.Errorf("%w: %s needs %d mana, have %d", ErrInvalidCommand, atk.Name, atk.ManaCost, state.Mana)
	}

	side := Enemies
	if atk.Heal {
		side = Players
	}
	target := Ref{Side: side, Index: cmd.Target}
	c, ok := state.Character(target)
	if !ok {
		return UseAttack{}, fmt.Errorf("%w: no %s target %d", ErrInvalidCommand, side, cmd.Target+1)
	}
	if !c.Alive() {
		return UseAttack{}, fmt.Errorf("%w: %s is down", ErrInvalidCommand, c.Name)
	}
	return UseAttack{Attacker: state.Turn, Target: target, Attack: atk}, nil
}

// EnemyTurn acts automatically once Think seconds have passed.
//
// The enemy uses its first attack; damaging attacks go to the living player
// with the least health (lowest index on ties), heals go to itself.
type EnemyTurn struct {
	Think float64

	waited float64
}

func (*EnemyTurn) OnStateChanged(Control, *State) bool { return false }

// HandleInput ignores input; enemies do not take commands.
func (*EnemyTurn) HandleInput(Control, Command) error { return nil }

func (n *EnemyTurn) HandleFrame(c Control, dt float64) error {
	n.waited += dt
	if n.waited < n.Think {
		return nil
	}
	n.waited = 0

	state := c.StoreState()
	enemy := state.Current()
	if len(enemy.Attacks) == 0 {
		c.ChangeStoreState(SkipTurn, Pass{})
		return c.TransitionTo(NodePostAttack)
	}

	atk := enemy.Attacks[0]
	target := state.Turn
	if !atk.Heal {
		target = weakestPlayer(state)
	}
	c.ChangeStoreState(ApplyAttack, UseAttack{Attacker: state.Turn, Target: target, Attack: atk})
	return c.TransitionTo(NodePostAttack)
}

func weakestPlayer(state *State) Ref {
	best := Ref{Side: Players, Index: -1}
	for i, p := range state.Players {
		if !p.Alive() {
			continue
		}
		if best.Index < 0 || p.Health < state.Players[best.Index].Health {
			best.Index = i
		}
	}
	return best
}

// PostAttack advances the turn on the next frame and routes to whoever acts
// next, or to the end of the battle.
type PostAttack struct{}

func (*PostAttack) OnStateChanged(Control, *State) bool { return false }

func (*PostAttack) HandleInput(Control, Command) error { return nil }

func (*PostAttack) HandleFrame(c Control, _ float64) error {
	c.ChangeStoreState(AdvanceTurn, NextTurn{})
	return c.TransitionVia(TurnRouter, Transition{Reason: "turn over"})
}

// BattleOver is terminal: it ignores frames and input.
//
// Outcome keeps instances distinct; pointers to zero-size values may compare
// equal, which would make two registered names indistinguishable.
type BattleOver struct {
	Outcome Outcome
}

func (*BattleOver) OnStateChanged(Control, *State) bool { return false }

func (*BattleOver) HandleInput(Control, Command) error { return nil }

func (*BattleOver) HandleFrame(Control, float64) error { return nil }
