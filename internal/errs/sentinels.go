// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a password mismatch on a data operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable indicates the backing store never became ready.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBatchTooLarge indicates a sync carried more levels than the server accepts.
	ErrBatchTooLarge = errors.New("batch too large")
)

// Store operation names attached to OpError. The transport layer maps these
// to client-facing error strings.
const (
	OpUserQuery    = "user query"
	OpUserCreate   = "user creation"
	OpUserUpdate   = "user update"
	OpLevelPublish = "public level update"
	OpLevelList    = "public levels query"
)

// OpError wraps a store failure with the name of the operation that failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

// Store wraps err as an OpError for the given operation. A nil err returns nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
