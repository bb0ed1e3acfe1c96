package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/morlovs/levelvault/internal/errs"
	"github.com/morlovs/levelvault/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL. Profiles are
// stored as a single jsonb column, so one row holds the whole save blob.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row. The unique index on username closes the
// signup check-then-create race; a duplicate maps to errs.ErrAlreadyExists.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	blob, err := json.Marshal(a.Profile)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO accounts (id, username, profile)
VALUES ($1, $2, $3)`
	_, err = r.db.Pool.Exec(ctx, q, a.ID, a.Username, blob)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByUsername selects an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT id, username, profile, created_at
FROM accounts WHERE username=$1`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var (
		a    model.Account
		blob []byte
	)
	if err := row.Scan(&a.ID, &a.Username, &blob, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(blob, &a.Profile); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceProfile overwrites the stored profile wholesale. Zero affected rows
// means the account vanished since lookup and maps to errs.ErrNotFound.
func (r *AccountRepo) ReplaceProfile(ctx context.Context, username string, p model.Profile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return err
	}
	const q = `
UPDATE accounts SET profile=$2 WHERE username=$1`
	tag, err := r.db.Pool.Exec(ctx, q, username, blob)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
