// Package config loads service configuration from config.toml, an optional
// environment overlay, and SCHEMATA_* environment variables.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/schemata/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSchemataEnv             = "SCHEMATA_ENV"
	EnvSchemataShutdownTimeout = "SCHEMATA_SHUTDOWN_TIMEOUT"
	EnvSchemataVersion         = "SCHEMATA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SCHEMATA_DB_HOST",
	Port:            "SCHEMATA_DB_PORT",
	Name:            "SCHEMATA_DB_NAME",
	User:            "SCHEMATA_DB_USER",
	Password:        "SCHEMATA_DB_PASSWORD",
	SSLMode:         "SCHEMATA_DB_SSL_MODE",
	MaxOpenConns:    "SCHEMATA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SCHEMATA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SCHEMATA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SCHEMATA_DB_CONN_TIMEOUT",
	ConnectAttempts: "SCHEMATA_DB_CONNECT_ATTEMPTS",
	AutoMigrate:     "SCHEMATA_DB_AUTO_MIGRATE",
}

// Config is the root configuration for the schemata service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	API             APIConfig        `toml:"api"`
	Classifier      ClassifierConfig `toml:"classifier"`
	Lease           LeaseConfig      `toml:"lease"`
	Metrics         MetricsConfig    `toml:"metrics"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env names the active overlay environment, "local" when SCHEMATA_ENV is unset.
func (c *Config) Env() string {
	return cmp.Or(os.Getenv(EnvSchemataEnv), "local")
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base config path. The overlay is resolved
// next to it.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Lease.Merge(&overlay.Lease)
	c.Metrics.Merge(&overlay.Metrics)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"api", c.API.Finalize},
		{"classifier", c.Classifier.Finalize},
		{"lease", c.Lease.Finalize},
		{"metrics", c.Metrics.Finalize},
	}
	for _, sec := range sections {
		if err := sec.finalize(); err != nil {
			return fmt.Errorf("%s: %w", sec.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSchemataShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSchemataVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// load decodes path strictly so a misspelled key fails loudly instead of
// silently falling back to a default.
func load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvSchemataEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
