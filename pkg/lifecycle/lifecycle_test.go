package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/schemata/pkg/lifecycle"
)

func TestStartupHooks(t *testing.T) {
	lc := lifecycle.New()

	if lc.Ready() {
		t.Fatal("ready before startup")
	}

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks ran %d times, want 3", got)
	}
	if !lc.Ready() {
		t.Error("not ready after startup")
	}
}

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	ctx := context.Background()

	if err := lc.Readiness(ctx); !errors.Is(err, lifecycle.ErrStarting) {
		t.Fatalf("Readiness() before startup = %v, want ErrStarting", err)
	}

	errLease := errors.New("connection refused")
	var leaseDown atomic.Bool
	lc.Check("database", func(context.Context) error { return nil })
	lc.Check("lease", func(context.Context) error {
		if leaseDown.Load() {
			return errLease
		}
		return nil
	})

	lc.WaitForStartup()

	if err := lc.Readiness(ctx); err != nil {
		t.Errorf("Readiness() = %v, want nil", err)
	}

	leaseDown.Store(true)
	err := lc.Readiness(ctx)
	if !errors.Is(err, errLease) || !strings.Contains(err.Error(), "lease: ") {
		t.Errorf("Readiness() = %v, want named lease failure", err)
	}
}

func TestShutdown(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not run")
	}
	if lc.Ready() {
		t.Error("still ready after shutdown")
	}
	if lc.Context().Err() == nil {
		t.Error("context not cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	release := make(chan struct{})
	defer close(release)
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-release
	})

	err := lc.Shutdown(20 * time.Millisecond)
	if !errors.Is(err, lifecycle.ErrShutdownTimeout) {
		t.Errorf("Shutdown() = %v, want ErrShutdownTimeout", err)
	}
}
