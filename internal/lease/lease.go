// Package lease provides a cross-instance lease on a classification run key.
// The lease only narrows the window in which two service instances call the
// classifier for the same key; the result store's unique constraint remains
// the authority on which result wins.
package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/schemata/internal/config"
)

// ErrHeld is returned by Acquire when another owner holds the lease.
var ErrHeld = errors.New("run lease held by another owner")

// Release gives the lease back. Releasing a lease that has expired or been
// taken over is not an error.
type Release func(ctx context.Context) error

// Locker acquires leases on run keys.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
	Ready(ctx context.Context) error
	Close() error
}

// New returns a Redis-backed Locker when leasing is enabled, otherwise a
// Locker that always grants the lease.
func New(cfg *config.LeaseConfig, logger *slog.Logger) Locker {
	logger = logger.With("system", "lease")
	if !cfg.Enabled {
		logger.Info("run lease disabled, using in-process deduplication only")
		return Noop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	logger.Info("run lease enabled", "addr", cfg.Addr, "ttl", cfg.TTL)
	return &redisLocker{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTLDuration(),
		logger: logger,
	}
}

// FormatKey returns the Redis key for a run key under prefix.
func FormatKey(prefix, key string) string {
	return fmt.Sprintf("%s:%s", prefix, key)
}

// releaseScript deletes the lease only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	k := FormatKey(l.prefix, key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", k, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	l.logger.Debug("lease acquired", "key", k)

	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{k}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lease %s: %w", k, err)
		}
		l.logger.Debug("lease released", "key", k)
		return nil
	}, nil
}

func (l *redisLocker) Ready(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *redisLocker) Close() error {
	return l.client.Close()
}

type noop struct{}

// Noop returns a Locker that grants every lease.
func Noop() Locker {
	return noop{}
}

func (noop) Acquire(context.Context, string) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

func (noop) Ready(context.Context) error { return nil }

func (noop) Close() error { return nil }
