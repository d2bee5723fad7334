package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zintix-labs/slotquest/server/app"
)

type failing struct {
	err      error
	shutdown bool
}

func (f *failing) Run() error                         { return f.err }
func (f *failing) Shutdown(ctx context.Context) error { f.shutdown = true; return nil }

type blocking struct {
	stop     chan struct{}
	shutdown bool
}

func (b *blocking) Run() error { <-b.stop; return nil }
func (b *blocking) Shutdown(ctx context.Context) error {
	b.shutdown = true
	close(b.stop)
	return nil
}

func TestRunStopsOnComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	f := &failing{err: boom}
	b := &blocking{stop: make(chan struct{})}
	a := app.NewWith(f, b)
	a.ShutdownTimeout = time.Second

	if err := a.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected component error, got %v", err)
	}
	if !f.shutdown || !b.shutdown {
		t.Fatalf("all components must be shut down")
	}
}

func TestRunReturnsNilWhenComponentStops(t *testing.T) {
	f := &failing{}
	b := &blocking{stop: make(chan struct{})}
	a := app.NewWith(f, b)
	if err := a.Run(); err != nil {
		t.Fatalf("clean stop must not be an error: %v", err)
	}
	if !b.shutdown {
		t.Fatalf("remaining components must be shut down")
	}
}
