package journal

import (
	"context"
	"fmt"
)

// Battle is one recorded battle.
type Battle struct {
	ID          string
	Name        string
	ContentPath string
	Snapshots   int
}

// Snapshot is one recorded state.
type Snapshot struct {
	BattleID  string
	Seq       int64
	StateJSON []byte
	StateHash string
}

// BeginBattle registers a new battle and returns its ID.
func (j *Journal) BeginBattle(ctx context.Context, name, contentPath string) (string, error) {
	id := j.ids.Generate()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO battles (id, name, content_path)
		VALUES (?, ?, ?)
	`, id, name, contentPath)
	if err != nil {
		return "", fmt.Errorf("begin battle: %w", err)
	}
	j.logger.Debug("battle started", "battle_id", id, "name", name)
	return id, nil
}

// Append writes one snapshot. Writing the same (battle, seq, state) twice
// is a no-op; writing a different state under an existing seq is an error.
func (j *Journal) Append(ctx context.Context, battleID string, seq int64, stateJSON []byte) (Snapshot, error) {
	snap := Snapshot{
		BattleID:  battleID,
		Seq:       seq,
		StateJSON: stateJSON,
		StateHash: HashState(stateJSON),
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO snapshots (battle_id, seq, state_json, state_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(battle_id, seq) DO NOTHING
	`, battleID, seq, string(stateJSON), snap.StateHash)
	if err != nil {
		return Snapshot{}, fmt.Errorf("append snapshot %d: %w", seq, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var existing string
		err := j.db.QueryRowContext(ctx, `
			SELECT state_hash FROM snapshots WHERE battle_id = ? AND seq = ?
		`, battleID, seq).Scan(&existing)
		if err != nil {
			return Snapshot{}, fmt.Errorf("append snapshot %d: %w", seq, err)
		}
		if existing != snap.StateHash {
			return Snapshot{}, fmt.Errorf("append snapshot %d: seq already recorded with a different state", seq)
		}
	}
	return snap, nil
}
