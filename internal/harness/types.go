package harness

import "github.com/roach88/battle/internal/battle"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every input behaved as declared and every
	// expectation held.
	Pass bool `json:"pass"`

	// Trace has one line per input and one per frame, in order.
	Trace []string `json:"trace"`

	// Errors lists failed checks. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Frames    int64         `json:"frames"`
	FinalNode string        `json:"final_node"`
	Final     *battle.State `json:"-"`
	History   int           `json:"history"`

	// Logs is the log line of every state the battle went through.
	Logs []string `json:"logs"`

	// BattleID and Snapshots describe the journal written during the run.
	BattleID  string `json:"battle_id"`
	Snapshots int    `json:"snapshots"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
