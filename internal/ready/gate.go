// Package ready tracks backing-store availability and gates data operations
// until the store is usable.
package ready

import (
	"context"
	"fmt"
	"sync"

	"github.com/morlovs/levelvault/internal/errs"
)

// State is the readiness of the backing store.
type State int

const (
	StateUnknown State = iota
	StateReady
	StateFailed
)

// String renders the state for the diagnostics page.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "connecting"
	}
}

// Gate resolves exactly once, to Ready or Failed. Callers suspend in
// AwaitReady until resolution instead of re-polling.
type Gate struct {
	mu    sync.Mutex
	state State
	cause error
	done  chan struct{}
}

// NewGate returns a gate in the Unknown state.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// SetReady resolves the gate as Ready. Calls after the first resolution are
// ignored.
func (g *Gate) SetReady() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnknown {
		return
	}
	g.state = StateReady
	close(g.done)
}

// Fail resolves the gate as Failed with the connection error. Calls after
// the first resolution are ignored.
func (g *Gate) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnknown {
		return
	}
	g.state = StateFailed
	g.cause = err
	close(g.done)
}

// State reports the current state without blocking.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// AwaitReady blocks until the gate resolves or ctx is done. It returns nil
// when the store is Ready, a wrapped errs.ErrStoreUnavailable when it Failed,
// and ctx.Err() on cancellation.
func (g *Gate) AwaitReady(ctx context.Context) error {
	select {
	case <-g.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateFailed {
		if g.cause != nil {
			return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, g.cause)
		}
		return errs.ErrStoreUnavailable
	}
	return nil
}
