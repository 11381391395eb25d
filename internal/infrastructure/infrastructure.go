// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, run lease, metrics,
// classifier gateway) that domain systems require.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/gateway"
	"github.com/JaimeStill/schemata/internal/lease"
	"github.com/JaimeStill/schemata/internal/metrics"
	"github.com/JaimeStill/schemata/internal/migrations"
	"github.com/JaimeStill/schemata/pkg/database"
	"github.com/JaimeStill/schemata/pkg/lifecycle"
)

// ErrNotReady is returned by Ready while a dependency is unavailable.
var ErrNotReady = errors.New("service not ready")

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Lease     lease.Locker
	Metrics   *metrics.Metrics
	Gateway   gateway.Gateway

	dbConfig *database.Config
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewWithLogger(cfg, logger)
}

// NewWithLogger is New with a caller-supplied root logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	m := metrics.New(&cfg.Metrics)

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Lease:     lease.New(&cfg.Lease, logger),
		Metrics:   m,
		Gateway:   gateway.New(&cfg.Classifier, logger, gateway.WithObserver(m.ObserveGateway)),
		dbConfig:  &cfg.Database,
	}, nil
}

// Start applies pending migrations when auto-migrate is enabled, then
// registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.dbConfig.AutoMigrate {
		if err := database.Migrate(i.dbConfig, migrations.FS, i.Logger); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}

	i.Lifecycle.Check("database", i.Database.Ping)
	i.Lifecycle.Check("lease", i.Lease.Ready)

	i.Lifecycle.OnStartup(func() {
		if err := i.Lease.Ready(i.Lifecycle.Context()); err != nil {
			i.Logger.Warn("run lease unavailable", "error", err)
		}
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Lease.Close(); err != nil {
			i.Logger.Error("run lease close failed", "error", err)
		}
	})

	return nil
}

// Ready reports whether the service can take traffic: startup finished,
// the database answered its ping, and the run lease backend is reachable.
func (i *Infrastructure) Ready(ctx context.Context) error {
	if err := i.Lifecycle.Readiness(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}
