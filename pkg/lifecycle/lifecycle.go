// Package lifecycle coordinates startup hooks, shutdown hooks, and readiness
// checks for the subsystems of a long-running service.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the timeout.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// ErrStarting is reported by Readiness until every startup hook has returned.
var ErrStarting = errors.New("startup in progress")

// CheckFunc reports why a subsystem cannot serve traffic, or nil.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// Coordinator runs startup hooks concurrently, tracks readiness checks, and
// cancels its context on shutdown so shutdown hooks can begin cleanup.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	started    atomic.Bool

	mu     sync.RWMutex
	checks []check
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently with the other startup hooks.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown runs fn concurrently. Hooks block on <-c.Context().Done()
// before releasing resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Check registers a named readiness check evaluated by Readiness.
func (c *Coordinator) Check(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check{name: name, fn: fn})
}

// Ready reports whether every startup hook has returned.
func (c *Coordinator) Ready() bool {
	return c.started.Load()
}

// Readiness returns nil when startup has finished and every registered
// check passes. Failing checks are joined, each prefixed with its name.
func (c *Coordinator) Readiness(ctx context.Context) error {
	if !c.Ready() {
		return ErrStarting
	}

	c.mu.RLock()
	checks := append([]check(nil), c.checks...)
	c.mu.RUnlock()

	var errs []error
	for _, ch := range checks {
		if err := ch.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
		}
	}
	return errors.Join(errs...)
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.started.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.started.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrShutdownTimeout, timeout)
	}
}
