package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/morlovs/levelvault/internal/diag"
	"github.com/morlovs/levelvault/internal/errs"
	"github.com/morlovs/levelvault/internal/model"
	"github.com/morlovs/levelvault/internal/repository"
)

// PublishResult is the outcome of one level's catalog publish attempt.
type PublishResult struct {
	LevelID string
	Created bool
	Err     error
}

// SyncService defines save/load of the player profile and catalog access.
type SyncService interface {
	// Sync replaces the stored profile wholesale and publishes any levels not
	// yet marked sentToServer. It returns the profile to echo back (flags set)
	// plus per-level publish outcomes.
	Sync(ctx context.Context, incoming model.Profile) (model.Profile, []PublishResult, error)
	// Load returns the stored profile verbatim.
	Load(ctx context.Context, incoming model.Profile) (model.Profile, error)
	// ListLevels returns every published level in store order.
	ListLevels(ctx context.Context) ([]model.Level, error)
}

type SyncServiceImpl struct {
	accounts  repository.AccountRepository
	levels    repository.LevelRepository
	diag      *diag.Buffer
	maxLevels int
}

// NewSyncService constructs SyncService with batch limits.
func NewSyncService(accounts repository.AccountRepository, levels repository.LevelRepository, d *diag.Buffer, maxLevels int) *SyncServiceImpl {
	if maxLevels <= 0 {
		maxLevels = 1000
	}
	return &SyncServiceImpl{accounts: accounts, levels: levels, diag: d, maxLevels: maxLevels}
}

// authorized applies the permissive password check: it only fails when both
// the stored profile and the incoming payload carry a password value and the
// values differ. Anonymous or freshly-created profiles pass.
func authorized(stored, incoming model.Profile) bool {
	if !stored.HasPassword() || !incoming.HasPassword() {
		return true
	}
	return stored.Password == incoming.Password
}

// Sync stores the incoming profile and publishes pending levels. The
// sentToServer flags are set before the profile is written, so the stored
// copy, the published copy, and the echoed copy all carry them.
func (s *SyncServiceImpl) Sync(ctx context.Context, incoming model.Profile) (model.Profile, []PublishResult, error) {
	if len(incoming.PublishedLevels) > s.maxLevels {
		return incoming, nil, fmt.Errorf("%w: %d levels (limit %d)", errs.ErrBatchTooLarge, len(incoming.PublishedLevels), s.maxLevels)
	}

	stored, err := s.accounts.GetByUsername(ctx, incoming.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return incoming, nil, err
		}
		return incoming, nil, errs.Store(errs.OpUserQuery, err)
	}
	if !authorized(stored.Profile, incoming) {
		return incoming, nil, errs.ErrUnauthorized
	}

	var pending []int
	for i := range incoming.PublishedLevels {
		if !incoming.PublishedLevels[i].SentToServer {
			pending = append(pending, i)
			incoming.PublishedLevels[i].SentToServer = true
		}
	}

	if err := s.accounts.ReplaceProfile(ctx, incoming.Username, incoming); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return incoming, nil, err
		}
		return incoming, nil, errs.Store(errs.OpUserUpdate, err)
	}

	// Each level is its own publish attempt; one failure does not stop the
	// rest, and already-created records are never rolled back.
	var (
		results  []PublishResult
		firstErr error
	)
	for _, i := range pending {
		lvl := incoming.PublishedLevels[i]
		created, err := s.levels.Publish(ctx, lvl)
		results = append(results, PublishResult{LevelID: lvl.ID, Created: created, Err: err})
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err == nil && created {
			s.diag.Append("LEVEL ADDED TO DATABASE! : " + lvl.Name)
		}
	}
	if firstErr != nil {
		return incoming, results, errs.Store(errs.OpLevelPublish, firstErr)
	}
	return incoming, results, nil
}

// Load returns the stored profile after the permissive password check.
func (s *SyncServiceImpl) Load(ctx context.Context, incoming model.Profile) (model.Profile, error) {
	stored, err := s.accounts.GetByUsername(ctx, incoming.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Profile{}, err
		}
		return model.Profile{}, errs.Store(errs.OpUserQuery, err)
	}
	if !authorized(stored.Profile, incoming) {
		return model.Profile{}, errs.ErrUnauthorized
	}
	return stored.Profile, nil
}

// ListLevels serves the whole catalog and records the count served.
func (s *SyncServiceImpl) ListLevels(ctx context.Context) ([]model.Level, error) {
	levels, err := s.levels.ListAll(ctx)
	if err != nil {
		return nil, errs.Store(errs.OpLevelList, err)
	}
	s.diag.Appendf("SENDING LEVELS %d", len(levels))
	return levels, nil
}
