package api

import (
	"net/http"

	"github.com/JaimeStill/schemata/pkg/openapi"
	"github.com/JaimeStill/schemata/pkg/routes"
)

// groups returns the route groups of every domain handler. Result display
// values are rendered by the results handler for both the results and
// classification endpoints.
func groups(domain *Domain) []routes.Group {
	resultsHandler := domain.Results.Handler(domain.Schemes)

	return []routes.Group{
		domain.Schemes.Handler().Routes(),
		domain.Documents.Handler().Routes(),
		resultsHandler.Routes(),
		domain.Classifications.Handler(resultsHandler).Routes(),
	}
}

func registerRoutes(mux *http.ServeMux, gs []routes.Group, specBytes []byte) {
	routes.Register(mux, gs...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
}
