package journal

import (
	"context"
	"fmt"
)

// IntegrityError reports a snapshot that does not match its recorded hash or
// breaks the seq sequence.
type IntegrityError struct {
	BattleID string
	Seq      int64
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("battle %s seq %d: %s", e.BattleID, e.Seq, e.Reason)
}

// Verify re-hashes every snapshot of a battle and checks that seqs run
// 0, 1, 2, ... without gaps. It returns the snapshots when they are intact.
func (j *Journal) Verify(ctx context.Context, battleID string) ([]Snapshot, error) {
	snaps, err := j.ReadBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	for i, s := range snaps {
		if s.Seq != int64(i) {
			return nil, &IntegrityError{BattleID: battleID, Seq: int64(i), Reason: fmt.Sprintf("missing; next recorded seq is %d", s.Seq)}
		}
		if got := HashState(s.StateJSON); got != s.StateHash {
			return nil, &IntegrityError{BattleID: battleID, Seq: s.Seq, Reason: fmt.Sprintf("state hash mismatch: recorded %s, computed %s", s.StateHash, got)}
		}
	}
	return snaps, nil
}

// Decode decodes each snapshot with decode, in seq order.
func Decode[S any](snaps []Snapshot, decode func([]byte) (S, error)) ([]S, error) {
	out := make([]S, 0, len(snaps))
	for _, s := range snaps {
		state, err := decode(s.StateJSON)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", s.Seq, err)
		}
		out = append(out, state)
	}
	return out, nil
}
