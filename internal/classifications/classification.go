// Package classifications exposes the classify pipeline over HTTP: single
// documents, batches, ad-hoc text, and the provider registry. Results are
// persisted by the results store; this package owns no tables.
package classifications

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/validator"
)

// BatchCommand classifies several documents under one scheme and run.
type BatchCommand struct {
	DocumentIDs    []uuid.UUID `json:"document_ids"`
	RunID          string      `json:"run_id,omitempty"`
	RunName        *string     `json:"run_name,omitempty"`
	RunDescription *string     `json:"run_description,omitempty"`
	Provider       string      `json:"provider,omitempty"`
	Model          string      `json:"model,omitempty"`
}

// BatchEntry reports the outcome for one document of a batch. Status is the
// code the document would have received from the single-document endpoint.
type BatchEntry struct {
	DocumentID uuid.UUID             `json:"document_id"`
	Status     int                   `json:"status"`
	Created    bool                  `json:"created"`
	Result     *results.Result       `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
	Violations []validator.Violation `json:"violations,omitempty"`
}

// BatchResponse summarizes a batch classification.
type BatchResponse struct {
	SchemeID uuid.UUID    `json:"scheme_id"`
	RunID    string       `json:"run_id"`
	Created  int          `json:"created"`
	Existing int          `json:"existing"`
	Failed   int          `json:"failed"`
	Items    []BatchEntry `json:"items"`
}

// TextCommand classifies ad-hoc text under a scheme. Nothing is stored.
type TextCommand struct {
	SchemeID uuid.UUID `json:"scheme_id"`
	Text     string    `json:"text"`
	Provider string    `json:"provider,omitempty"`
	Model    string    `json:"model,omitempty"`
}

// TextResult is the validated value of an ad-hoc classification.
type TextResult struct {
	SchemeID     uuid.UUID      `json:"scheme_id"`
	Value        map[string]any `json:"value"`
	DisplayValue any            `json:"display_value"`
	Provider     string         `json:"provider"`
	Model        string         `json:"model"`
}
