package lease_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/lease"
)

func TestFormatKey(t *testing.T) {
	if got := lease.FormatKey("schemata:run", "d/s/default"); got != "schemata:run:d/s/default" {
		t.Errorf("FormatKey() = %q", got)
	}
}

func TestNoop(t *testing.T) {
	l := lease.New(&config.LeaseConfig{Enabled: false}, slog.Default())
	ctx := context.Background()

	for range 2 {
		release, err := l.Acquire(ctx, "same-key")
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if err := release(ctx); err != nil {
			t.Errorf("release error = %v", err)
		}
	}

	if err := l.Ready(ctx); err != nil {
		t.Errorf("Ready() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

// TestRedis runs against a live Redis named by SCHEMATA_TEST_REDIS_ADDR.
func TestRedis(t *testing.T) {
	addr := os.Getenv("SCHEMATA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SCHEMATA_TEST_REDIS_ADDR not set")
	}

	cfg := &config.LeaseConfig{Enabled: true, Addr: addr, TTL: "5s", Prefix: "schemata:test"}
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}

	l := lease.New(cfg, slog.Default())
	t.Cleanup(func() { l.Close() })

	ctx := context.Background()
	if err := l.Ready(ctx); err != nil {
		t.Fatalf("Ready() = %v", err)
	}

	key := uuid.NewString()

	release, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("first Acquire() = %v", err)
	}

	if _, err := l.Acquire(ctx, key); !errors.Is(err, lease.ErrHeld) {
		t.Errorf("second Acquire() = %v, want ErrHeld", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release = %v", err)
	}
	if err := release(ctx); err != nil {
		t.Errorf("second release = %v", err)
	}

	again, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire() after release = %v", err)
	}
	again(ctx)
}
