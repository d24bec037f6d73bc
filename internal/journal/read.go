package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrBattleNotFound is returned for an unknown battle ID.
var ErrBattleNotFound = errors.New("battle not found")

// Battles lists every recorded battle, oldest first.
func (j *Journal) Battles(ctx context.Context) ([]Battle, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.content_path, COUNT(s.seq)
		FROM battles b
		LEFT JOIN snapshots s ON s.battle_id = b.id
		GROUP BY b.id
		ORDER BY b.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query battles: %w", err)
	}
	defer rows.Close()

	battles := []Battle{}
	for rows.Next() {
		var b Battle
		if err := rows.Scan(&b.ID, &b.Name, &b.ContentPath, &b.Snapshots); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		battles = append(battles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battles: %w", err)
	}
	return battles, nil
}

// Battle returns one battle's metadata.
func (j *Journal) Battle(ctx context.Context, id string) (Battle, error) {
	var b Battle
	err := j.db.QueryRowContext(ctx, `
		SELECT b.id, b.name, b.content_path,
		       (SELECT COUNT(*) FROM snapshots s WHERE s.battle_id = b.id)
		FROM battles b
		WHERE b.id = ?
	`, id).Scan(&b.ID, &b.Name, &b.ContentPath, &b.Snapshots)
	if errors.Is(err, sql.ErrNoRows) {
		return Battle{}, fmt.Errorf("%w: %s", ErrBattleNotFound, id)
	}
	if err != nil {
		return Battle{}, fmt.Errorf("query battle: %w", err)
	}
	return b, nil
}

// ReadBattle returns a battle's snapshots ordered by seq. An unknown ID
// returns ErrBattleNotFound; a known battle with no snapshots returns an
// empty slice.
func (j *Journal) ReadBattle(ctx context.Context, id string) ([]Snapshot, error) {
	if _, err := j.Battle(ctx, id); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT battle_id, seq, state_json, state_hash
		FROM snapshots
		WHERE battle_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var (
			s    Snapshot
			body string
		)
		if err := rows.Scan(&s.BattleID, &s.Seq, &body, &s.StateHash); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.StateJSON = []byte(body)
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}
