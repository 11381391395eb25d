// Package database owns the PostgreSQL connection pool and ties its
// startup and shutdown to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/schemata/pkg/lifecycle"
)

// ErrUnavailable is returned by Ping before the pool has connected or after
// it has been closed.
var ErrUnavailable = errors.New("database unavailable")

// System is a lifecycle-managed connection pool.
type System interface {
	Connection() *sql.DB
	// Start registers the connect and close hooks with lc.
	Start(lc *lifecycle.Coordinator) error
	// Ping verifies the pool can reach the server.
	Ping(ctx context.Context) error
}

type database struct {
	conn      *sql.DB
	logger    *slog.Logger
	timeout   time.Duration
	attempts  uint
	connected atomic.Bool
}

// New opens the pool without connecting. The first connection is made by
// the startup hook registered in Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:     db,
		logger:   logger.With("system", "database"),
		timeout:  cfg.ConnTimeoutDuration(),
		attempts: uint(max(cfg.ConnectAttempts, 1)),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ping(ctx context.Context) error {
	if !d.connected.Load() {
		return ErrUnavailable
	}
	return d.ping(ctx)
}

func (d *database) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.conn.PingContext(ctx)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		err := retry.Do(
			func() error { return d.ping(lc.Context()) },
			retry.Context(lc.Context()),
			retry.Attempts(d.attempts),
			retry.Delay(time.Second),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				d.logger.Warn("database ping failed, retrying", "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			d.logger.Error("database unreachable", "attempts", d.attempts, "error", err)
			return
		}

		d.connected.Store(true)
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.connected.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
