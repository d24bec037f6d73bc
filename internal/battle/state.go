// Package battle is sample content for the engine: a party of players
// against a group of enemies, taking turns in a fixed round-robin order.
//
// Everything here is supplied to the engine as opaque payloads: *State is the
// store State, Action the store action, Transition the transition action and
// Command the input event.
package battle

import (
	"fmt"
	"strings"
)

// Side identifies which group a character belongs to.
type Side int

const (
	Players Side = iota
	Enemies
)

func (s Side) String() string {
	switch s {
	case Players:
		return "players"
	case Enemies:
		return "enemies"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Outcome is the result of a finished battle.
type Outcome int

const (
	Undecided Outcome = iota
	PlayersWin
	EnemiesWin
)

func (o Outcome) String() string {
	switch o {
	case PlayersWin:
		return "players"
	case EnemiesWin:
		return "enemies"
	default:
		return ""
	}
}

// Attack is an immutable attack definition.
type Attack struct {
	Name     string
	Power    int
	ManaCost int
	// Heal attacks restore health to an ally instead of damaging an enemy.
	Heal bool
}

// Character is one combatant. Attacks is shared between snapshots and must
// never be modified.
type Character struct {
	Name      string
	MaxHealth int
	Health    int
	Attacks   []Attack
}

// Alive reports whether the character can still act.
func (c Character) Alive() bool {
	return c.Health > 0
}

// Ref addresses one character in a State.
type Ref struct {
	Side  Side
	Index int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s[%d]", r.Side, r.Index)
}

// State is one immutable snapshot of a battle. Reducers copy before writing.
type State struct {
	Players   []Character
	Enemies   []Character
	Turn      Ref
	Round     int
	Mana      int
	MaxMana   int
	ManaRegen int
	Winner    Outcome
	// Log describes the most recent event.
	Log string
}

// Side returns the characters on side s.
func (s *State) Side(side Side) []Character {
	if side == Players {
		return s.Players
	}
	return s.Enemies
}

// Character returns the character at ref. ok is false when ref is out of range.
func (s *State) Character(ref Ref) (Character, bool) {
	group := s.Side(ref.Side)
	if ref.Index < 0 || ref.Index >= len(group) {
		return Character{}, false
	}
	return group[ref.Index], true
}

// Current returns the character whose turn it is.
func (s *State) Current() Character {
	c, _ := s.Character(s.Turn)
	return c
}

// Over reports whether the battle has a winner.
func (s *State) Over() bool {
	return s.Winner != Undecided
}

// Summary is a one-line description used by traces and logs.
func (s *State) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "round=%d turn=%s mana=%d/%d hp=[", s.Round, s.Current().Name, s.Mana, s.MaxMana)
	writeGroup(&b, s.Players)
	b.WriteString(" | ")
	writeGroup(&b, s.Enemies)
	b.WriteString("]")
	if s.Winner != Undecided {
		fmt.Fprintf(&b, " winner=%s", s.Winner)
	}
	return b.String()
}

func writeGroup(b *strings.Builder, group []Character) {
	for i, c := range group {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(b, "%s:%d", c.Name, c.Health)
	}
}

// clone returns a copy whose character slices can be written freely.
func (s *State) clone() *State {
	next := *s
	next.Players = append([]Character(nil), s.Players...)
	next.Enemies = append([]Character(nil), s.Enemies...)
	return &next
}

// outcome computes the winner from health alone.
func (s *State) outcome() Outcome {
	switch {
	case !anyAlive(s.Enemies):
		return PlayersWin
	case !anyAlive(s.Players):
		return EnemiesWin
	default:
		return Undecided
	}
}

func anyAlive(group []Character) bool {
	for _, c := range group {
		if c.Alive() {
			return true
		}
	}
	return false
}

// turnOrder lists every character, players first.
func (s *State) turnOrder() []Ref {
	order := make([]Ref, 0, len(s.Players)+len(s.Enemies))
	for i := range s.Players {
		order = append(order, Ref{Side: Players, Index: i})
	}
	for i := range s.Enemies {
		order = append(order, Ref{Side: Enemies, Index: i})
	}
	return order
}

// Roster is the immutable setup for one battle.
type Roster struct {
	Players   []Character
	Enemies   []Character
	First     Side
	Mana      int
	MaxMana   int
	ManaRegen int
	// EnemyThink is how long, in seconds, an enemy waits before acting.
	EnemyThink float64
}

// NewState builds the initial snapshot: full health, first living
// character of the First side to act, round 1.
func NewState(r Roster) *State {
	s := &State{
		Players:   copyFullHealth(r.Players),
		Enemies:   copyFullHealth(r.Enemies),
		Round:     1,
		Mana:      r.Mana,
		MaxMana:   r.MaxMana,
		ManaRegen: r.ManaRegen,
	}
	s.Turn = Ref{Side: r.First}
	for i, c := range s.Side(r.First) {
		if c.Alive() {
			s.Turn = Ref{Side: r.First, Index: i}
			break
		}
	}
	s.Log = "battle begins"
	return s
}

func copyFullHealth(group []Character) []Character {
	out := make([]Character, len(group))
	for i, c := range group {
		if c.Health == 0 {
			c.Health = c.MaxHealth
		}
		out[i] = c
	}
	return out
}
