package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/battle/internal/battle"
)

// checkExpect evaluates the scenario's expectations against a finished run.
func checkExpect(s *Scenario, r *Result) {
	e := s.Expect

	if e.Node != "" && r.FinalNode != e.Node {
		r.AddError(fmt.Sprintf("expected final node %q, got %q", e.Node, r.FinalNode))
	}
	if e.Winner != "" && r.Final.Winner.String() != e.Winner {
		r.AddError(fmt.Sprintf("expected winner %q, got %q", e.Winner, r.Final.Winner))
	}
	if e.Frames != 0 && r.Frames != int64(e.Frames) {
		r.AddError(fmt.Sprintf("expected %d frames, ran %d", e.Frames, r.Frames))
	}
	if e.HistoryLen != nil && r.History != *e.HistoryLen {
		r.AddError(fmt.Sprintf("expected history length %d, got %d", *e.HistoryLen, r.History))
	}

	names := make([]string, 0, len(e.Health))
	for name := range e.Health {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		want := e.Health[name]
		got, ok := healthOf(r.Final, name)
		switch {
		case !ok:
			r.AddError(fmt.Sprintf("expected character %q to exist", name))
		case got != want:
			r.AddError(fmt.Sprintf("expected %s health %d, got %d", name, want, got))
		}
	}

	for _, text := range e.LogContains {
		if !anyContains(r.Logs, text) {
			r.AddError(fmt.Sprintf("expected a log line containing %q", text))
		}
	}
}

func healthOf(state *battle.State, name string) (int, bool) {
	for _, group := range [][]battle.Character{state.Players, state.Enemies} {
		for _, c := range group {
			if c.Name == name {
				return c.Health, true
			}
		}
	}
	return 0, false
}

func anyContains(lines []string, text string) bool {
	for _, line := range lines {
		if strings.Contains(line, text) {
			return true
		}
	}
	return false
}
