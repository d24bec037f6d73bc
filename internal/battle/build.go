package battle

import (
	"fmt"
	"log/slog"

	"github.com/roach88/battle/internal/director"
	"github.com/roach88/battle/internal/machine"
	"github.com/roach88/battle/internal/store"
)

// Machine, Store and Director are the engine types instantiated for battles.
type (
	Machine  = machine.Machine[*State, Action, Transition, Command]
	Store    = store.Store[*State, Action]
	Director = director.Director[*State, Action, Transition, Command]
	Renderer = director.Renderer[*State]
)

// Options tunes the engine components Build creates.
type Options struct {
	Store    []store.Option
	Director []director.Option
	Logger   *slog.Logger
}

// InitialNode returns the node the machine starts in for r.
func InitialNode(r Roster) string {
	if r.First == Enemies {
		return NodeEnemyTurn
	}
	return NodePlayerTurn
}

// NewMachine creates a machine with every battle node registered.
func NewMachine(r Roster, opts ...machine.Option) (*Machine, error) {
	m := machine.New[*State, Action, Transition, Command](InitialNode(r), opts...)
	nodes := []struct {
		name string
		node machine.Node[*State, Action, Transition, Command]
	}{
		{NodePlayerTurn, &PlayerTurn{}},
		{NodeEnemyTurn, &EnemyTurn{Think: r.EnemyThink}},
		{NodePostAttack, &PostAttack{}},
		{NodeVictory, &BattleOver{Outcome: PlayersWin}},
		{NodeDefeat, &BattleOver{Outcome: EnemiesWin}},
	}
	for _, n := range nodes {
		if err := m.Register(n.name, n.node); err != nil {
			return nil, fmt.Errorf("register %s: %w", n.name, err)
		}
	}
	return m, nil
}

// Build wires a store, a machine and a director for one battle.
func Build(r Roster, renderer Renderer, opts Options) (*Director, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := store.New[*State, Action](NewState(r), append([]store.Option{store.WithLogger(logger)}, opts.Store...)...)
	m, err := NewMachine(r, machine.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	d, err := director.New(st, m, renderer, append([]director.Option{director.WithLogger(logger)}, opts.Director...)...)
	if err != nil {
		return nil, fmt.Errorf("build battle: %w", err)
	}
	return d, nil
}
