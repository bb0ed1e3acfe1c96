package repository

import (
	"context"

	"github.com/morlovs/levelvault/internal/model"
)

// LevelRepository provides access to the shared catalog of published levels.
type LevelRepository interface {
	// Publish inserts the level unless its id is already present. It reports
	// whether a new record was created; a duplicate id is a silent no-op.
	Publish(ctx context.Context, level model.Level) (created bool, err error)
	// ListAll returns every published level payload in store order.
	ListAll(ctx context.Context) ([]model.Level, error)
}
