package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvMetricsEnabled   = "SCHEMATA_METRICS_ENABLED"
	EnvMetricsNamespace = "SCHEMATA_METRICS_NAMESPACE"
	EnvMetricsPath      = "SCHEMATA_METRICS_PATH"
)

// MetricsConfig controls the Prometheus collectors and scrape endpoint.
type MetricsConfig struct {
	Enabled   *bool  `toml:"enabled"`
	Namespace string `toml:"namespace"`
	Path      string `toml:"path"`
}

// IsEnabled reports whether metrics are collected. Metrics are on unless
// explicitly disabled.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MetricsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with /: %q", c.Path)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	if overlay.Enabled != nil {
		v := *overlay.Enabled
		c.Enabled = &v
	}
	if overlay.Namespace != "" {
		c.Namespace = overlay.Namespace
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}

func (c *MetricsConfig) loadDefaults() {
	if c.Namespace == "" {
		c.Namespace = "schemata"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c *MetricsConfig) loadEnv() {
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &b
		}
	}
	if v := os.Getenv(EnvMetricsNamespace); v != "" {
		c.Namespace = v
	}
	if v := os.Getenv(EnvMetricsPath); v != "" {
		c.Path = v
	}
}
