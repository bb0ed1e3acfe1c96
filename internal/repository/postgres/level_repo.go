package postgres

import (
	"context"
	"encoding/json"

	"github.com/morlovs/levelvault/internal/model"
)

// LevelRepo implements LevelRepository using PostgreSQL.
type LevelRepo struct{ db *DB }

// NewLevelRepo constructs a level repository.
func NewLevelRepo(db *DB) *LevelRepo { return &LevelRepo{db: db} }

// Publish inserts the level keyed by its client-generated id. ON CONFLICT
// DO NOTHING makes the first publisher win atomically; a repeated publish
// affects zero rows and is reported as created=false, not as an error.
func (r *LevelRepo) Publish(ctx context.Context, level model.Level) (bool, error) {
	blob, err := json.Marshal(level)
	if err != nil {
		return false, err
	}
	const q = `
INSERT INTO public_levels (id, data)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING`
	tag, err := r.db.Pool.Exec(ctx, q, level.ID, blob)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListAll returns every published level payload. No explicit ordering: the
// catalog listing is whatever the store returns.
func (r *LevelRepo) ListAll(ctx context.Context) ([]model.Level, error) {
	const q = `SELECT data FROM public_levels`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Level
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var lvl model.Level
		if err := json.Unmarshal(blob, &lvl); err != nil {
			return nil, err
		}
		out = append(out, lvl)
	}
	return out, rows.Err()
}
