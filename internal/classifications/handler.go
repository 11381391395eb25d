package classifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/display"
	"github.com/JaimeStill/schemata/internal/results"
	"github.com/JaimeStill/schemata/internal/validator"
	"github.com/JaimeStill/schemata/pkg/handlers"
	"github.com/JaimeStill/schemata/pkg/routes"
)

// Attacher renders display values onto stored results.
type Attacher interface {
	Attach(ctx context.Context, list ...*results.Result) error
}

// Handler provides HTTP endpoints for running classifications.
type Handler struct {
	sys     System
	display Attacher
	logger  *slog.Logger
}

// NewHandler creates a Handler. display renders results before they are returned.
func NewHandler(sys System, display Attacher, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		display: display,
		logger:  logger.With("handler", "classifications"),
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags:    []string{"Classifications"},
		Schemas: schemas,
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/schemes/{schemeId}/classify/{documentId}", Handler: h.Classify, OpenAPI: spec.Classify},
			{Method: "POST", Pattern: "/schemes/{schemeId}/classify", Handler: h.ClassifyBatch, OpenAPI: spec.ClassifyBatch},
			{Method: "POST", Pattern: "/classify", Handler: h.ClassifyText, OpenAPI: spec.ClassifyText},
			{Method: "GET", Pattern: "/providers", Handler: h.Providers, OpenAPI: spec.Providers},
		},
	}
}

// Classify classifies one document under one scheme. It returns 201 when a
// result was written and 200 when the run already had one.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	req, err := RequestFromHTTP(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	out, err := h.sys.Classify(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.display.Attach(r.Context(), out.Result); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	handlers.RespondJSON(w, status, out.Result)
}

// ClassifyBatch classifies every document in the body under the scheme in
// the path. Per-document failures are reported in the items; the response
// is 200 unless the request itself is invalid.
func (h *Handler) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	schemeID, err := uuid.Parse(r.PathValue("schemeId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var cmd BatchCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req := cmd.request(schemeID, apiKey(r))
	items, err := h.sys.ClassifyBatch(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := batchResponse(req, items)

	var stored []*results.Result
	for _, entry := range resp.Items {
		if entry.Result != nil {
			stored = append(stored, entry.Result)
		}
	}
	if err := h.display.Attach(r.Context(), stored...); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// ClassifyText classifies the text in the body without storing a result.
func (h *Handler) ClassifyText(w http.ResponseWriter, r *http.Request) {
	var cmd TextCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	out, err := h.sys.ClassifyText(r.Context(), cmd.request(apiKey(r)))
	if err != nil {
		h.respondError(w, err)
		return
	}

	raw, err := results.EncodeValue(out.Value)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	shown, err := display.DisplayJSON(out.Fields, raw)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, TextResult{
		SchemeID:     out.SchemeID,
		Value:        out.Value,
		DisplayValue: shown,
		Provider:     out.Provider,
		Model:        out.Model,
	})
}

// Providers lists the configured classifier providers and their models.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Providers())
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		handlers.RespondErrorDetail(w, h.logger, status, err, "violations", verr.Violations)
		return
	}

	handlers.RespondError(w, h.logger, status, err)
}
