package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	EnvClassifierTimeout         = "SCHEMATA_CLASSIFIER_TIMEOUT"
	EnvClassifierMaxRetries      = "SCHEMATA_CLASSIFIER_MAX_RETRIES"
	EnvClassifierRetryDelay      = "SCHEMATA_CLASSIFIER_RETRY_DELAY"
	EnvClassifierConcurrency     = "SCHEMATA_CLASSIFIER_CONCURRENCY"
	EnvClassifierDefaultProvider = "SCHEMATA_CLASSIFIER_DEFAULT_PROVIDER"

	// EnvProviderKeyPattern names the per-provider API key variable,
	// e.g. SCHEMATA_PROVIDER_GOOGLE_API_KEY.
	EnvProviderKeyPattern = "SCHEMATA_PROVIDER_%s_API_KEY"
)

// retryJitter is the gateway retry policy's maximum random delay per attempt.
const retryJitter = 100 * time.Millisecond

// ProviderConfig describes one OpenAI-compatible chat completions endpoint.
type ProviderConfig struct {
	Name         string   `toml:"name"`
	BaseURL      string   `toml:"base_url"`
	APIKey       string   `toml:"api_key"`
	DefaultModel string   `toml:"default_model"`
	Models       []string `toml:"models"`
	Anonymous    bool     `toml:"anonymous"`
}

// ClassifierConfig holds gateway call settings and the provider registry.
type ClassifierConfig struct {
	Timeout         string           `toml:"timeout"`
	MaxRetries      int              `toml:"max_retries"`
	RetryDelay      string           `toml:"retry_delay"`
	Concurrency     int              `toml:"concurrency"`
	DefaultProvider string           `toml:"default_provider"`
	Providers       []ProviderConfig `toml:"providers"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ClassifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *ClassifierConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// BudgetDuration bounds one classifier call across all of its attempts:
// Timeout per attempt plus the exponential backoff and jitter between them.
func (c *ClassifierConfig) BudgetDuration() time.Duration {
	budget := c.TimeoutDuration() * time.Duration(c.MaxRetries+1)
	delay := c.RetryDelayDuration()
	for range c.MaxRetries {
		budget += delay + retryJitter
		delay *= 2
	}
	return budget
}

// Provider returns the provider registered under name, matched case-insensitively.
func (c *ClassifierConfig) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. A non-empty overlay provider
// list replaces the base list.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.DefaultProvider != "" {
		c.DefaultProvider = overlay.DefaultProvider
	}
	if len(overlay.Providers) > 0 {
		c.Providers = slices.Clone(overlay.Providers)
	}
}

func (c *ClassifierConfig) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "2s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if len(c.Providers) == 0 {
		c.Providers = []ProviderConfig{
			{
				Name:         "google",
				BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai/",
				DefaultModel: "gemini-2.0-flash-exp",
				Models:       []string{"gemini-2.0-flash-exp", "gemini-1.5-pro"},
			},
			{
				Name:         "openai",
				BaseURL:      "https://api.openai.com/v1/",
				DefaultModel: "gpt-4o-mini",
				Models:       []string{"gpt-4o-mini", "gpt-4o"},
			},
		}
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = c.Providers[0].Name
	}
}

func (c *ClassifierConfig) loadEnv() {
	if v := os.Getenv(EnvClassifierTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvClassifierMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvClassifierRetryDelay); v != "" {
		c.RetryDelay = v
	}
	if v := os.Getenv(EnvClassifierConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvClassifierDefaultProvider); v != "" {
		c.DefaultProvider = v
	}

	for i := range c.Providers {
		name := strings.ToUpper(strings.ReplaceAll(c.Providers[i].Name, "-", "_"))
		if v := os.Getenv(fmt.Sprintf(EnvProviderKeyPattern, name)); v != "" {
			c.Providers[i].APIKey = v
		}
	}
}

func (c *ClassifierConfig) validate() error {
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name required", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("providers[%d]: duplicate name %q", i, p.Name)
		}
		seen[key] = true
		if p.BaseURL == "" {
			return fmt.Errorf("providers[%d]: base_url required", i)
		}
		if p.DefaultModel == "" {
			return fmt.Errorf("providers[%d]: default_model required", i)
		}
	}

	if _, ok := c.Provider(c.DefaultProvider); !ok {
		return fmt.Errorf("default_provider %q is not configured", c.DefaultProvider)
	}
	return nil
}
