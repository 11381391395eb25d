package api

import (
	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/pkg/openapi"
	"github.com/JaimeStill/schemata/pkg/routes"
)

// NewSpec builds the OpenAPI document for the API module from the
// documented routes of gs.
func NewSpec(cfg *config.Config, gs []routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(
		cfg.API.OpenAPI.Title,
		cfg.Version,
		openapi.WithDescription(cfg.API.OpenAPI.Description),
		openapi.WithServer(cfg.API.BasePath, "API module"),
	)
	routes.Describe(spec, gs...)
	return spec
}
