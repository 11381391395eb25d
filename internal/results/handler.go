package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/display"
	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/pkg/handlers"
	"github.com/JaimeStill/schemata/pkg/pagination"
	"github.com/JaimeStill/schemata/pkg/routes"
)

// Handler provides HTTP endpoints for reading and deleting results.
// Every returned result carries a display value rendered against its
// scheme's current fields.
type Handler struct {
	sys        System
	schemes    schemes.System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler. sch resolves scheme fields for display values.
func NewHandler(
	sys System,
	sch schemes.System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		schemes:    sch,
		logger:     logger.With("handler", "results"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for result endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/results",
		Tags:    []string{"Results"},
		Schemas: schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: spec.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: spec.Find},
			{Method: "GET", Pattern: "/scheme/{id}", Handler: h.ListByScheme, OpenAPI: spec.ListByScheme},
			{Method: "GET", Pattern: "/document/{id}", Handler: h.ListByDocument, OpenAPI: spec.ListByDocument},
			{Method: "GET", Pattern: "/run/{runId}", Handler: h.ListByRun, OpenAPI: spec.ListByRun},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: spec.Delete},
		},
	}
}

// List returns a paginated list of results with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	h.respondPage(w, r, result, err)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	h.respondPage(w, r, result, err)
}

// Find returns a single result by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	res, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.Attach(r.Context(), res); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}

// ListByScheme returns results for one scheme ordered by timestamp.
func (h *Handler) ListByScheme(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.ListByScheme(r.Context(), id, page)
	h.respondPage(w, r, result, err)
}

// ListByDocument returns results for one document ordered by timestamp.
func (h *Handler) ListByDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.ListByDocument(r.Context(), id, page)
	h.respondPage(w, r, result, err)
}

// ListByRun returns results for one run ordered by timestamp.
func (h *Handler) ListByRun(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.ListByRun(r.Context(), r.PathValue("runId"), page)
	h.respondPage(w, r, result, err)
}

// Delete removes a result by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Attach renders DisplayValue on each result using its scheme's fields.
// Schemes are looked up once per call.
func (h *Handler) Attach(ctx context.Context, list ...*Result) error {
	cache := make(map[uuid.UUID][]fields.Field)

	for _, res := range list {
		fs, ok := cache[res.SchemeID]
		if !ok {
			s, err := h.schemes.Find(ctx, res.SchemeID)
			if err != nil {
				return fmt.Errorf("load scheme %s for display: %w", res.SchemeID, err)
			}
			fs = s.Fields
			cache[res.SchemeID] = fs
		}

		v, err := display.DisplayJSON(fs, res.Value)
		if err != nil {
			return fmt.Errorf("display result %s: %w", res.ID, err)
		}
		res.DisplayValue = v
	}

	return nil
}

func (h *Handler) respondPage(w http.ResponseWriter, r *http.Request, page *pagination.PageResult[Result], err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	ptrs := make([]*Result, len(page.Data))
	for i := range page.Data {
		ptrs[i] = &page.Data[i]
	}

	if err := h.Attach(r.Context(), ptrs...); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
