package journal

import (
	"context"
	"encoding/json"
	"fmt"
)

// Encoder turns a state into the JSON stored in the journal.
type Encoder[S any] func(state S) ([]byte, error)

// JSONEncoder encodes with encoding/json.
func JSONEncoder[S any](state S) ([]byte, error) {
	return json.Marshal(state)
}

// Recorder is a store subscriber that appends every new state to the
// journal. It never short-circuits notification.
//
// Write failures do not reach the store: the first one is kept in Err, logged,
// and recording stops.
type Recorder[S any] struct {
	ctx      context.Context
	journal  *Journal
	battleID string
	encode   Encoder[S]
	seq      int64
	err      error
}

// NewRecorder returns a Recorder for battleID. A nil encode uses
// JSONEncoder.
func NewRecorder[S any](ctx context.Context, j *Journal, battleID string, encode Encoder[S]) *Recorder[S] {
	if encode == nil {
		encode = JSONEncoder[S]
	}
	return &Recorder[S]{ctx: ctx, journal: j, battleID: battleID, encode: encode}
}

// Record writes state as the next snapshot. Use it for the initial state,
// which no subscriber is notified about.
func (r *Recorder[S]) Record(state S) error {
	if r.err != nil {
		return r.err
	}
	body, err := r.encode(state)
	if err != nil {
		r.fail(fmt.Errorf("encode snapshot %d: %w", r.seq, err))
		return r.err
	}
	if _, err := r.journal.Append(r.ctx, r.battleID, r.seq, body); err != nil {
		r.fail(err)
		return r.err
	}
	r.seq++
	return nil
}

// OnStateChanged records state and returns false.
func (r *Recorder[S]) OnStateChanged(state S) bool {
	_ = r.Record(state)
	return false
}

// Seq is the seq the next snapshot will get.
func (r *Recorder[S]) Seq() int64 {
	return r.seq
}

// Err returns the first write failure, if any.
func (r *Recorder[S]) Err() error {
	return r.err
}

func (r *Recorder[S]) fail(err error) {
	r.err = err
	r.journal.logger.Error("journal recording stopped",
		"battle_id", r.battleID,
		"seq", r.seq,
		"error", err,
	)
}
