package workflow

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/schemata/internal/documents"
	"github.com/JaimeStill/schemata/internal/gateway"
	"github.com/JaimeStill/schemata/internal/lease"
	"github.com/JaimeStill/schemata/internal/metrics"
	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/schemes"
)

const defaultPollInterval = 250 * time.Millisecond

// Runtime bundles the dependencies the classify pipeline requires.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Schemes   schemes.System
	Documents documents.System
	Results   results.System
	Gateway   gateway.Gateway
	Lease     lease.Locker
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// Timeout bounds the classifier call, retries included, and the wait on
	// a run held by another instance.
	Timeout time.Duration

	// Concurrency caps in-flight documents in a batch.
	Concurrency int

	// PollInterval is how often a waiting caller checks the result store
	// while another instance holds the run lease.
	PollInterval time.Duration

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

func (rt *Runtime) observeClassify(outcome string, elapsed time.Duration) {
	if rt.Metrics != nil {
		rt.Metrics.ObserveClassify(outcome, elapsed)
	}
}

func (rt *Runtime) observeViolation(kind string) {
	if rt.Metrics != nil {
		rt.Metrics.ObserveViolation(kind)
	}
}

func (rt *Runtime) locker() lease.Locker {
	if rt.Lease == nil {
		return lease.Noop()
	}
	return rt.Lease
}

func (rt *Runtime) pollInterval() time.Duration {
	if rt.PollInterval <= 0 {
		return defaultPollInterval
	}
	return rt.PollInterval
}

func (rt *Runtime) concurrency() int {
	return max(rt.Concurrency, 1)
}
