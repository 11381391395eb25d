package classifications

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/validator"
	"github.com/JaimeStill/schemata/internal/workflow"
)

// APIKeyHeader carries a per-request provider credential.
const APIKeyHeader = "X-API-Key"

// RequestFromHTTP builds a workflow request from the schemeId and documentId
// path values and the run and provider query parameters.
func RequestFromHTTP(r *http.Request) (workflow.Request, error) {
	schemeID, err := uuid.Parse(r.PathValue("schemeId"))
	if err != nil {
		return workflow.Request{}, ErrInvalidID
	}
	documentID, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		return workflow.Request{}, ErrInvalidID
	}

	q := r.URL.Query()
	return workflow.Request{
		SchemeID:       schemeID,
		DocumentID:     documentID,
		RunID:          q.Get("run_id"),
		RunName:        optional(q.Get("run_name")),
		RunDescription: optional(q.Get("run_description")),
		Provider:       q.Get("provider"),
		Model:          q.Get("model"),
		APIKey:         apiKey(r),
	}, nil
}

func (c BatchCommand) request(schemeID uuid.UUID, key string) workflow.BatchRequest {
	return workflow.BatchRequest{
		SchemeID:       schemeID,
		DocumentIDs:    c.DocumentIDs,
		RunID:          c.RunID,
		RunName:        c.RunName,
		RunDescription: c.RunDescription,
		Provider:       c.Provider,
		Model:          c.Model,
		APIKey:         key,
	}
}

func (c TextCommand) request(key string) workflow.TextRequest {
	return workflow.TextRequest{
		SchemeID: c.SchemeID,
		Text:     c.Text,
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   key,
	}
}

func batchEntry(item workflow.BatchItem) BatchEntry {
	entry := BatchEntry{DocumentID: item.DocumentID}

	if item.Err != nil {
		entry.Status = MapHTTPStatus(item.Err)
		entry.Error = item.Err.Error()

		var verr *validator.ValidationError
		if errors.As(item.Err, &verr) {
			entry.Violations = verr.Violations
		}
		return entry
	}

	entry.Result = item.Outcome.Result
	entry.Created = item.Outcome.Created
	entry.Status = http.StatusOK
	if entry.Created {
		entry.Status = http.StatusCreated
	}
	return entry
}

func batchResponse(req workflow.BatchRequest, items []workflow.BatchItem) BatchResponse {
	resp := BatchResponse{
		SchemeID: req.SchemeID,
		RunID:    results.NormalizeRunID(req.RunID),
		Items:    make([]BatchEntry, len(items)),
	}

	for i, item := range items {
		entry := batchEntry(item)
		switch {
		case entry.Error != "":
			resp.Failed++
		case entry.Created:
			resp.Created++
		default:
			resp.Existing++
		}
		resp.Items[i] = entry
	}

	return resp
}

func apiKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
