// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/morlovs/levelvault/internal/model"
)

// AccountRepository provides CRUD access to player accounts.
type AccountRepository interface {
	// Create inserts a new account. Returns errs.ErrAlreadyExists when the
	// username is taken.
	Create(ctx context.Context, a *model.Account) error
	// GetByUsername loads an account by username.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	// ReplaceProfile overwrites the stored profile wholesale.
	ReplaceProfile(ctx context.Context, username string, p model.Profile) error
}
