package openapi

import (
	"cmp"
	"os"
)

const (
	defaultTitle       = "Schemata API"
	defaultDescription = "Scheme-driven structured classification of text documents."
)

// Config carries the document metadata shown in info.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize fills defaults and applies environment overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.Title = cmp.Or(c.Title, defaultTitle)
	c.Description = cmp.Or(c.Description, defaultDescription)

	if env != nil {
		c.Title = cmp.Or(getenv(env.Title), c.Title)
		c.Description = cmp.Or(getenv(env.Description), c.Description)
	}
	return nil
}

// Merge applies the non-empty fields of overlay.
func (c *Config) Merge(overlay *Config) {
	c.Title = cmp.Or(overlay.Title, c.Title)
	c.Description = cmp.Or(overlay.Description, c.Description)
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
