package ready

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/morlovs/levelvault/internal/errs"
)

func TestGate_AwaitReady_AfterSetReady(t *testing.T) {
	t.Parallel()
	g := NewGate()
	g.SetReady()
	if err := g.AwaitReady(context.Background()); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
	if g.State() != StateReady {
		t.Fatalf("state = %v, want ready", g.State())
	}
}

func TestGate_AwaitReady_BlocksUntilResolved(t *testing.T) {
	t.Parallel()
	g := NewGate()

	done := make(chan error, 1)
	go func() { done <- g.AwaitReady(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("AwaitReady returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	g.SetReady()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AwaitReady after SetReady: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("AwaitReady did not wake up")
	}
}

func TestGate_Fail_SurfacesCause(t *testing.T) {
	t.Parallel()
	g := NewGate()
	cause := errors.New("connection refused")
	g.Fail(cause)

	err := g.AwaitReady(context.Background())
	if !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
	if g.State() != StateFailed {
		t.Fatalf("state = %v, want failed", g.State())
	}
}

func TestGate_FirstResolutionWins(t *testing.T) {
	t.Parallel()
	g := NewGate()
	g.SetReady()
	g.Fail(errors.New("too late"))
	if g.State() != StateReady {
		t.Fatalf("state changed after resolution: %v", g.State())
	}
	if err := g.AwaitReady(context.Background()); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
}

func TestGate_AwaitReady_ContextCancel(t *testing.T) {
	t.Parallel()
	g := NewGate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.AwaitReady(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
