package battle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/battle/internal/machine"
	"github.com/roach88/battle/internal/testutil"
)

func testRoster() Roster {
	return Roster{
		Players: []Character{
			{Name: "Hero", MaxHealth: 30, Attacks: []Attack{
				{Name: "Slash", Power: 8},
				{Name: "Fireball", Power: 15, ManaCost: 10},
			}},
			{Name: "Cleric", MaxHealth: 20, Attacks: []Attack{
				{Name: "Smite", Power: 4},
				{Name: "Mend", Power: 10, ManaCost: 5, Heal: true},
			}},
		},
		Enemies: []Character{
			{Name: "Goblin", MaxHealth: 12, Attacks: []Attack{{Name: "Club", Power: 5}}},
			{Name: "Orc", MaxHealth: 25, Attacks: []Attack{{Name: "Axe", Power: 7}}},
		},
		First:      Players,
		Mana:       20,
		MaxMana:    20,
		ManaRegen:  5,
		EnemyThink: 0.5,
	}
}

func TestNewState(t *testing.T) {
	s := NewState(testRoster())

	assert.Equal(t, Ref{Side: Players, Index: 0}, s.Turn)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 30, s.Players[0].Health)
	assert.Equal(t, 25, s.Enemies[1].Health)
	assert.Equal(t, "Hero", s.Current().Name)
	assert.False(t, s.Over())
	assert.Equal(t, "round=1 turn=Hero mana=20/20 hp=[Hero:30 Cleric:20 | Goblin:12 Orc:25]", s.Summary())
}

func TestNewState_EnemiesFirst(t *testing.T) {
	r := testRoster()
	r.First = Enemies
	s := NewState(r)

	assert.Equal(t, Ref{Side: Enemies, Index: 0}, s.Turn)
	assert.Equal(t, NodeEnemyTurn, InitialNode(r))
}

func TestApplyAttack_Damage(t *testing.T) {
	prev := NewState(testRoster())
	use := UseAttack{
		Attacker: Ref{Side: Players, Index: 0},
		Target:   Ref{Side: Enemies, Index: 0},
		Attack:   Attack{Name: "Fireball", Power: 15, ManaCost: 10},
	}

	next := ApplyAttack(use, prev)

	assert.Equal(t, 0, next.Enemies[0].Health, "health clamps at zero")
	assert.Equal(t, 10, next.Mana)
	assert.Equal(t, "Hero uses Fireball on Goblin (-12), Goblin falls", next.Log)

	// Copy-on-write: prev untouched.
	assert.Equal(t, 12, prev.Enemies[0].Health)
	assert.Equal(t, 20, prev.Mana)
	assert.NotSame(t, prev, next)
}

func TestApplyAttack_HealClampsAtMax(t *testing.T) {
	prev := NewState(testRoster())
	prev.Players[0].Health = 25

	next := ApplyAttack(UseAttack{
		Attacker: Ref{Side: Players, Index: 1},
		Target:   Ref{Side: Players, Index: 0},
		Attack:   Attack{Name: "Mend", Power: 10, ManaCost: 5, Heal: true},
	}, prev)

	assert.Equal(t, 30, next.Players[0].Health)
	assert.Equal(t, "Cleric uses Mend on Hero (+5)", next.Log)
	assert.Equal(t, 15, next.Mana)
}

func TestApplyAttack_EnemyCostsNoMana(t *testing.T) {
	prev := NewState(testRoster())
	next := ApplyAttack(UseAttack{
		Attacker: Ref{Side: Enemies, Index: 1},
		Target:   Ref{Side: Players, Index: 1},
		Attack:   Attack{Name: "Axe", Power: 7, ManaCost: 3},
	}, prev)

	assert.Equal(t, 13, next.Players[1].Health)
	assert.Equal(t, 20, next.Mana)
}

func TestApplyAttack_IgnoresOtherActions(t *testing.T) {
	prev := NewState(testRoster())
	assert.Same(t, prev, ApplyAttack(NextTurn{}, prev))
	assert.Same(t, prev, ApplyAttack(UseAttack{Target: Ref{Side: Enemies, Index: 9}}, prev))
}

func TestAdvanceTurn_RoundRobin(t *testing.T) {
	s := NewState(testRoster())
	s.Mana = 12

	var names []string
	for i := 0; i < 4; i++ {
		s = AdvanceTurn(NextTurn{}, s)
		names = append(names, s.Current().Name)
	}

	assert.Equal(t, []string{"Cleric", "Goblin", "Orc", "Hero"}, names)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 17, s.Mana, "mana regenerates on a new round")
}

func TestAdvanceTurn_SkipsDefeated(t *testing.T) {
	s := NewState(testRoster())
	s.Players[1].Health = 0
	s.Enemies[0].Health = 0

	s = AdvanceTurn(NextTurn{}, s)
	assert.Equal(t, "Orc", s.Current().Name)

	s = AdvanceTurn(NextTurn{}, s)
	assert.Equal(t, "Hero", s.Current().Name)
	assert.Equal(t, 2, s.Round)
}

func TestAdvanceTurn_ManaRegenCapped(t *testing.T) {
	s := NewState(testRoster())
	s.Turn = Ref{Side: Enemies, Index: 1}

	s = AdvanceTurn(NextTurn{}, s)
	assert.Equal(t, 20, s.Mana)
}

func TestAdvanceTurn_Winner(t *testing.T) {
	s := NewState(testRoster())
	s.Enemies[0].Health = 0
	s.Enemies[1].Health = 0

	next := AdvanceTurn(NextTurn{}, s)
	assert.Equal(t, PlayersWin, next.Winner)
	assert.Equal(t, s.Turn, next.Turn)
	assert.True(t, next.Over())
	assert.Equal(t, "players win", next.Log)

	s = NewState(testRoster())
	s.Players[0].Health = 0
	s.Players[1].Health = 0
	assert.Equal(t, EnemiesWin, AdvanceTurn(NextTurn{}, s).Winner)
}

func TestSkipTurn(t *testing.T) {
	s := NewState(testRoster())
	assert.Equal(t, "Hero waits", SkipTurn(Pass{}, s).Log)
	assert.Same(t, s, SkipTurn(NextTurn{}, s))
}

func TestTurnRouter(t *testing.T) {
	all := []string{NodeDefeat, NodeEnemyTurn, NodePlayerTurn, NodePostAttack, NodeVictory}
	s := NewState(testRoster())

	assert.Equal(t, NodePlayerTurn, TurnRouter(NodePostAttack, s, Transition{}, all))

	s.Turn = Ref{Side: Enemies, Index: 0}
	assert.Equal(t, NodeEnemyTurn, TurnRouter(NodePostAttack, s, Transition{}, all))

	s.Winner = PlayersWin
	assert.Equal(t, NodeVictory, TurnRouter(NodePostAttack, s, Transition{}, all))

	s.Winner = EnemiesWin
	assert.Equal(t, NodeDefeat, TurnRouter(NodePostAttack, s, Transition{}, all))

	// A variant registering a single end node.
	assert.Equal(t, NodeBattleOver, TurnRouter(NodePostAttack, s, Transition{}, []string{NodeBattleOver, NodePlayerTurn}))
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"attack 1 2", Command{Attack: 0, Target: 1}},
		{"  A 2 1 ", Command{Attack: 1, Target: 0}},
		{"pass", Command{Pass: true}},
		{"p", Command{Pass: true}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"", "attack", "attack x 1", "attack 0 1", "pass now", "flee"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseCommand(line)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCommand)
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "attack 2 1", Command{Attack: 1}.String())
	assert.Equal(t, "pass", Command{Pass: true}.String())
}

func TestNewMachine_RegistersNodes(t *testing.T) {
	m, err := NewMachine(testRoster())
	require.NoError(t, err)

	assert.Equal(t, []string{NodeDefeat, NodeEnemyTurn, NodePlayerTurn, NodePostAttack, NodeVictory}, m.Nodes())
	name, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, NodePlayerTurn, name)
}

func newBattle(t *testing.T) (*Director, *testutil.RenderRecorder[*State]) {
	t.Helper()
	rec := &testutil.RenderRecorder[*State]{}
	d, err := Build(testRoster(), rec, Options{})
	require.NoError(t, err)
	return d, rec
}

func currentNode(t *testing.T, d *Director) string {
	t.Helper()
	name, err := d.CurrentNode()
	require.NoError(t, err)
	return name
}

func TestBattle_PlayerAttackThenEnemyResponds(t *testing.T) {
	d, rec := newBattle(t)

	require.NoError(t, d.OnFrame(0.25))
	assert.Equal(t, NodePlayerTurn, currentNode(t, d), "waits for input")

	require.NoError(t, d.HandleInput(Command{Attack: 0, Target: 0}))
	assert.Equal(t, NodePostAttack, currentNode(t, d))
	assert.Equal(t, 4, d.StoreState().Enemies[0].Health)

	require.NoError(t, d.OnFrame(0.25))
	assert.Equal(t, NodePlayerTurn, currentNode(t, d))
	assert.Equal(t, "Cleric", d.StoreState().Current().Name)

	require.NoError(t, d.HandleInput(Command{Attack: 0, Target: 0}))
	require.NoError(t, d.OnFrame(0.25))
	assert.Equal(t, "Orc", d.StoreState().Current().Name, "goblin fell, so its turn is skipped")
	assert.Equal(t, NodeEnemyTurn, currentNode(t, d))
	assert.Equal(t, 0, d.StoreState().Enemies[0].Health)

	assert.Len(t, rec.Frames, 3)
}

func TestBattle_EnemyThinksBeforeActing(t *testing.T) {
	r := testRoster()
	r.First = Enemies
	rec := &testutil.RenderRecorder[*State]{}
	d, err := Build(r, rec, Options{})
	require.NoError(t, err)

	require.NoError(t, d.OnFrame(0.25))
	assert.Equal(t, NodeEnemyTurn, currentNode(t, d))
	assert.Equal(t, 30, d.StoreState().Players[0].Health)

	require.NoError(t, d.OnFrame(0.25))
	assert.Equal(t, NodePostAttack, currentNode(t, d))
	// Cleric has less health than Hero.
	assert.Equal(t, 15, d.StoreState().Players[1].Health)
	assert.Equal(t, "Goblin uses Club on Cleric (-5)", d.StoreState().Log)
}

func TestBattle_InvalidCommandKeepsTurn(t *testing.T) {
	d, _ := newBattle(t)

	err := d.HandleInput(Command{Attack: 5, Target: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCommand))
	assert.Equal(t, NodePlayerTurn, currentNode(t, d))
	assert.Empty(t, d.StoreHistory())

	err = d.HandleInput(Command{Attack: 0, Target: 7})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestBattle_NotEnoughMana(t *testing.T) {
	r := testRoster()
	r.Mana = 5
	rec := &testutil.RenderRecorder[*State]{}
	d, err := Build(r, rec, Options{})
	require.NoError(t, err)

	err = d.HandleInput(Command{Attack: 1, Target: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fireball needs 10 mana, have 5")
}

func TestBattle_Victory(t *testing.T) {
	r := testRoster()
	r.Enemies = r.Enemies[:1]
	rec := &testutil.RenderRecorder[*State]{}
	d, err := Build(r, rec, Options{})
	require.NoError(t, err)

	require.NoError(t, d.HandleInput(Command{Attack: 1, Target: 0}))
	require.NoError(t, d.OnFrame(0.1))

	assert.Equal(t, NodeVictory, currentNode(t, d))
	assert.Equal(t, PlayersWin, d.StoreState().Winner)

	// Terminal node ignores further frames and input.
	require.NoError(t, d.OnFrame(0.1))
	require.NoError(t, d.HandleInput(Command{Pass: true}))
	assert.Equal(t, NodeVictory, currentNode(t, d))
}

func TestBattle_PassAdvancesTurn(t *testing.T) {
	d, _ := newBattle(t)

	require.NoError(t, d.HandleInput(Command{Pass: true}))
	require.NoError(t, d.OnFrame(0.1))

	assert.Equal(t, "Cleric", d.StoreState().Current().Name)
	assert.Len(t, d.StoreHistory(), 2)
}

func TestBattle_DuplicateRegistrationSurfaced(t *testing.T) {
	m, err := NewMachine(testRoster())
	require.NoError(t, err)
	err = m.Register(NodeVictory, &BattleOver{})
	assert.True(t, machine.IsDuplicateNodeName(err))
}
