package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/morlovs/levelvault/internal/errs"
	"github.com/morlovs/levelvault/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestAccountRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	a := &model.Account{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		Profile:  model.Profile{Username: "alice", Password: "pw1"},
	}

	// OK
	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(a.ID, a.Username, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, a))

	// Unique violation on username
	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(a.ID, a.Username, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, a)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	blob := []byte(`{"username":"alice","password":"pw1","progress":{"world":3}}`)

	mock.ExpectQuery(`SELECT id, username, profile, created_at`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "profile", "created_at"}).
			AddRow(id, "alice", blob, time.Now()))
	a, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", a.Username)
	require.Equal(t, "pw1", a.Profile.Password)

	mock.ExpectQuery(`SELECT id, username, profile, created_at`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_ReplaceProfile(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	p := model.Profile{Username: "alice", Password: "pw1"}

	mock.ExpectExec(`UPDATE accounts SET profile=`).
		WithArgs("alice", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.ReplaceProfile(ctx, "alice", p))

	// target vanished between lookup and update
	mock.ExpectExec(`UPDATE accounts SET profile=`).
		WithArgs("alice", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.ReplaceProfile(ctx, "alice", p), errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
