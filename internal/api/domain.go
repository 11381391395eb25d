package api

import (
	"github.com/JaimeStill/schemata/internal/classifications"
	"github.com/JaimeStill/schemata/internal/documents"
	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Schemes         schemes.System
	Documents       documents.System
	Results         results.System
	Classifications classifications.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	schemesSystem := schemes.New(db, runtime.Logger, runtime.Pagination)
	docsSystem := documents.New(db, runtime.Logger, runtime.Pagination)
	resultsSystem := results.New(db, runtime.Logger, runtime.Pagination)

	rt := &workflow.Runtime{
		Schemes:     schemesSystem,
		Documents:   docsSystem,
		Results:     resultsSystem,
		Gateway:     runtime.Gateway,
		Lease:       runtime.Lease,
		Metrics:     runtime.Metrics,
		Logger:      runtime.Logger.With("workflow", "classify"),
		Timeout:     runtime.Classifier.BudgetDuration(),
		Concurrency: runtime.Classifier.Concurrency,
	}

	return &Domain{
		Schemes:         schemesSystem,
		Documents:       docsSystem,
		Results:         resultsSystem,
		Classifications: classifications.New(rt, runtime.Logger),
	}
}
