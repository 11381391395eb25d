package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvLeaseEnabled  = "SCHEMATA_LEASE_ENABLED"
	EnvLeaseAddr     = "SCHEMATA_LEASE_ADDR"
	EnvLeasePassword = "SCHEMATA_LEASE_PASSWORD"
	EnvLeaseDB       = "SCHEMATA_LEASE_DB"
	EnvLeaseTTL      = "SCHEMATA_LEASE_TTL"
	EnvLeasePrefix   = "SCHEMATA_LEASE_PREFIX"
)

// LeaseConfig holds the Redis connection used for cross-instance run leases.
// When Enabled is false the service runs with an in-process lease only.
type LeaseConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
	Prefix   string `toml:"prefix"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *LeaseConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LeaseConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LeaseConfig) Merge(overlay *LeaseConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
}

func (c *LeaseConfig) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.TTL == "" {
		c.TTL = "7m"
	}
	if c.Prefix == "" {
		c.Prefix = "schemata:run"
	}
}

func (c *LeaseConfig) loadEnv() {
	if v := os.Getenv(EnvLeaseEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvLeaseAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvLeasePassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvLeaseDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DB = n
		}
	}
	if v := os.Getenv(EnvLeaseTTL); v != "" {
		c.TTL = v
	}
	if v := os.Getenv(EnvLeasePrefix); v != "" {
		c.Prefix = v
	}
}

func (c *LeaseConfig) validate() error {
	if d, err := time.ParseDuration(c.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid ttl: %q", c.TTL)
	}
	if c.DB < 0 {
		return fmt.Errorf("db cannot be negative")
	}
	return nil
}
