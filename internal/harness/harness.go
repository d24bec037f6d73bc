package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/battle/internal/battle"
	"github.com/roach88/battle/internal/content"
	"github.com/roach88/battle/internal/director"
	"github.com/roach88/battle/internal/journal"
	"github.com/roach88/battle/internal/loop"
	"github.com/roach88/battle/internal/testutil"
)

// Harness holds the pieces of one scenario run.
type Harness struct {
	scenario *Scenario
	director *battle.Director
	loop     *loop.Loop[battle.Command]
	journal  *journal.Journal
	recorder *journal.Recorder[*battle.State]
	result   *Result
	frame    int
}

// Run executes a scenario and returns the result. The returned error is
// for setup failures only; failed expectations are reported in the Result.
//
// Each run gets a fresh in-memory journal and a fixed frame clock.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for journal writes.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	c, err := content.Load(scenario.Content)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	j, err := journal.Open(":memory:",
		journal.WithIDGenerator(journal.NewFixedGenerator("scenario-"+scenario.Name)),
		journal.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	battleID, err := j.BeginBattle(ctx, c.Name, scenario.Content)
	if err != nil {
		return nil, err
	}

	d, err := battle.Build(c.Roster, &testutil.RenderRecorder[*battle.State]{}, battle.Options{
		Logger: logger,
		// Input errors are written to the trace instead.
		Director: []director.Option{director.WithErrorHandler(func(error) {})},
	})
	if err != nil {
		return nil, err
	}

	rec := journal.NewRecorder[*battle.State](ctx, j, battleID, nil)
	if err := rec.Record(d.StoreState()); err != nil {
		return nil, err
	}
	d.AddStoreSubscriber(rec)

	h := &Harness{
		scenario: scenario,
		director: d,
		journal:  j,
		recorder: rec,
		result:   NewResult(),
	}
	h.result.BattleID = battleID
	h.loop = loop.New[battle.Command](&tracingTarget{h: h},
		loop.WithClock(testutil.NewStepClock(scenario.FrameDT)),
		loop.WithLogger(logger),
	)

	h.run()
	h.finish(ctx)
	return h.result, nil
}

func (h *Harness) run() {
	next := 0
	inputs := h.scenario.Inputs
	for h.frame = 1; h.frame <= h.scenario.Frames; h.frame++ {
		for next < len(inputs) && inputs[next].Frame == h.frame {
			h.loop.Enqueue(inputs[next].parsed)
			next++
		}
		// Errors already reached the trace through tracingTarget.
		_ = h.loop.Step()
		if h.director.StoreState().Over() {
			break
		}
	}
}

func (h *Harness) finish(ctx context.Context) {
	r := h.result
	r.Frames = h.loop.Frames()
	r.Final = h.director.StoreState()
	history := h.director.StoreHistory()
	r.History = len(history)
	for _, state := range append(history, r.Final) {
		r.Logs = append(r.Logs, state.Log)
	}
	if node, err := h.director.CurrentNode(); err == nil {
		r.FinalNode = node
	} else {
		r.AddError(fmt.Sprintf("current node: %v", err))
	}

	if err := h.recorder.Err(); err != nil {
		r.AddError(fmt.Sprintf("journal: %v", err))
	}
	snaps, err := h.journal.Verify(ctx, r.BattleID)
	if err != nil {
		r.AddError(fmt.Sprintf("journal: %v", err))
	}
	r.Snapshots = len(snaps)
	if err == nil && r.Snapshots != r.History+1 {
		r.AddError(fmt.Sprintf("journal: %d snapshots for %d state changes", r.Snapshots, r.History))
	}

	checkExpect(h.scenario, r)
}

// inputAt returns the scenario input delivered as the n-th input overall.
func (h *Harness) inputAt(n int) InputStep {
	return h.scenario.Inputs[n]
}

// tracingTarget sits between the loop and the director and writes every
// input and frame to the trace.
type tracingTarget struct {
	h      *Harness
	inputs int
}

func (t *tracingTarget) HandleInput(cmd battle.Command) error {
	in := t.h.inputAt(t.inputs)
	t.inputs++

	err := t.h.director.HandleInput(cmd)
	line := fmt.Sprintf("frame=%d input=%q", t.h.frame, cmd.String())
	if err != nil {
		line += fmt.Sprintf(" error=%q", err.Error())
	}
	t.h.result.Trace = append(t.h.result.Trace, line)

	switch {
	case err != nil && !in.Rejected:
		t.h.result.AddError(fmt.Sprintf("frame %d: input %q failed: %v", t.h.frame, in.Command, err))
	case err == nil && in.Rejected:
		t.h.result.AddError(fmt.Sprintf("frame %d: input %q was expected to be rejected", t.h.frame, in.Command))
	}
	return err
}

func (t *tracingTarget) OnFrame(dt float64) error {
	err := t.h.director.OnFrame(dt)

	node, nodeErr := t.h.director.CurrentNode()
	if nodeErr != nil {
		node = "?"
	}
	state := t.h.director.StoreState()
	line := fmt.Sprintf("frame=%d node=%s %s log=%q", t.h.frame, node, state.Summary(), state.Log)
	if err != nil {
		line += fmt.Sprintf(" error=%q", err.Error())
		t.h.result.AddError(err.Error())
	}
	t.h.result.Trace = append(t.h.result.Trace, line)
	return err
}
