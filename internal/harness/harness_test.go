package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/battle/internal/battle"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_Victory(t *testing.T) {
	result, err := Run(loadScenario(t, "duel_victory"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, battle.NodeVictory, result.FinalNode)
	assert.Equal(t, int64(9), result.Frames)
	assert.Equal(t, 10, result.History)
	assert.Equal(t, 11, result.Snapshots, "initial state plus one per change")
	assert.Equal(t, "scenario-duel_victory", result.BattleID)
	assert.Len(t, result.Trace, 14)
	assert.Equal(t, "battle begins", result.Logs[0])
	assert.Equal(t, "players win", result.Logs[len(result.Logs)-1])
}

func TestRun_Idle(t *testing.T) {
	result, err := Run(loadScenario(t, "duel_idle"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, battle.NodePlayerTurn, result.FinalNode)
	assert.Equal(t, 1, result.Snapshots)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "duel_victory")
	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_FailedExpectations(t *testing.T) {
	s := loadScenario(t, "duel_idle")
	history := 3
	s.Expect = Expect{
		Node:        battle.NodeVictory,
		Winner:      "players",
		Frames:      5,
		HistoryLen:  &history,
		Health:      map[string]int{"Hero": 1, "Ghost": 3},
		LogContains: []string{"dragon"},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		`expected final node "Victory", got "PlayerTurn"`,
		`expected winner "players", got ""`,
		"expected 5 frames, ran 2",
		"expected history length 3, got 0",
		`expected character "Ghost" to exist`,
		"expected Hero health 1, got 20",
		`expected a log line containing "dragon"`,
	}, result.Errors)
}

func TestRun_UnexpectedRejection(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_input
content: testdata/content/duel.yaml
frame_dt: 0.25
frames: 1
inputs:
  - {frame: 1, command: attack 3 1}
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `frame 1: input "attack 3 1" failed`)
}

func TestRun_UnexpectedAcceptance(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: accepted
content: testdata/content/duel.yaml
frame_dt: 0.25
frames: 1
inputs:
  - {frame: 1, command: pass, rejected: true}
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{`frame 1: input "pass" was expected to be rejected`}, result.Errors)
}

func TestRun_BadContent(t *testing.T) {
	s, err := ParseScenario([]byte("name: x\ncontent: testdata/content/missing.yaml\nframe_dt: 1\nframes: 1\n"))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load content")
}
