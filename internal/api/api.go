// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/infrastructure"
	"github.com/JaimeStill/schemata/pkg/middleware"
	"github.com/JaimeStill/schemata/pkg/module"
	"github.com/JaimeStill/schemata/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)
	gs := groups(domain)

	specBytes, err := openapi.MarshalJSON(NewSpec(cfg, gs))
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, gs, specBytes)

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}

	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)
	if cfg.Metrics.IsEnabled() {
		m.Use(runtime.Metrics.Middleware())
	}
	m.Use(middleware.MaxBody(cfg.API.MaxBodySizeBytes()))

	return m, nil
}
