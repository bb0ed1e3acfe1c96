// Package service contains application services for authentication and
// profile synchronization.
package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/morlovs/levelvault/internal/diag"
	"github.com/morlovs/levelvault/internal/errs"
	"github.com/morlovs/levelvault/internal/limiter"
	"github.com/morlovs/levelvault/internal/model"
	"github.com/morlovs/levelvault/internal/repository"
)

// AuthService defines login and signup operations.
type AuthService interface {
	// Signup creates a new account holding only username and password.
	Signup(ctx context.Context, username, password string) error
	// Login authenticates the user, rate-limited by (username, ip).
	Login(ctx context.Context, username, password, ip string) error
}

type AuthServiceImpl struct {
	accounts repository.AccountRepository
	lim      limiter.Limiter
	diag     *diag.Buffer
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.AccountRepository, lim limiter.Limiter, d *diag.Buffer) *AuthServiceImpl {
	return &AuthServiceImpl{accounts: accounts, lim: lim, diag: d}
}

// Signup creates the account. Username uniqueness is enforced by the store's
// unique constraint, so two concurrent signups cannot both succeed.
func (s *AuthServiceImpl) Signup(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("empty username/password")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return err
	}
	a := &model.Account{
		ID:       uid,
		Username: username,
		Profile:  model.Profile{Username: username, Password: password},
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return err
		}
		return errs.Store(errs.OpUserCreate, err)
	}
	s.diag.Append("SIGNUP SUCCESSFUL")
	return nil
}

// Login checks the supplied password against the stored profile. The stored
// password is compared verbatim; this mirrors the save-blob protocol, where
// the credential travels in plaintext inside the profile.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, ip string) error {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return errs.Store(errs.OpUserQuery, err)
	}
	if !allowed {
		return errs.ErrRateLimited
	}

	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// unknown usernames still count against the limiter
			_, _, _ = s.lim.Failure(ctx, username, ipHash)
			return err
		}
		return errs.Store(errs.OpUserQuery, err)
	}

	if a.Profile.Password != password {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return errs.ErrRateLimited
		}
		return errs.ErrUnauthorized
	}

	// best-effort reset
	_ = s.lim.Success(ctx, username, ipHash)
	return nil
}
