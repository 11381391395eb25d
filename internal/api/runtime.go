package api

import (
	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/infrastructure"
	"github.com/JaimeStill/schemata/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Classifier *config.ClassifierConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Classifier:     &cfg.Classifier,
	}
}
