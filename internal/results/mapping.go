package results

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "results", "r").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("scheme_id", "SchemeID").
	Project("run_id", "RunID").
	Project("run_name", "RunName").
	Project("run_description", "RunDescription").
	Project("value", "Value").
	Project("provider", "Provider").
	Project("model", "Model").
	Project("recorded_at", "Timestamp").
	Join("public", "documents", "d", "JOIN", "d.id = r.document_id").
	Project("title", "DocumentTitle").
	Join("public", "schemes", "s", "JOIN", "s.id = r.scheme_id").
	Project("name", "SchemeName")

var defaultSort = []query.SortField{
	{Field: "Timestamp"},
	{Field: "ID"},
}

// Filters contains optional filtering criteria for result queries.
// RunName uses case-insensitive contains matching; the id lists match any
// member.
type Filters struct {
	DocumentID  *uuid.UUID  `json:"document_id,omitempty"`
	SchemeID    *uuid.UUID  `json:"scheme_id,omitempty"`
	RunID       *string     `json:"run_id,omitempty"`
	RunName     *string     `json:"run_name,omitempty"`
	Provider    *string     `json:"provider,omitempty"`
	Model       *string     `json:"model,omitempty"`
	DocumentIDs []uuid.UUID `json:"document_ids,omitempty"`
	SchemeIDs   []uuid.UUID `json:"scheme_ids,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("SchemeID", f.SchemeID).
		WhereEquals("RunID", f.RunID).
		WhereContains("RunName", f.RunName).
		WhereEquals("Provider", f.Provider).
		WhereEquals("Model", f.Model).
		WhereInUUIDs("DocumentID", f.DocumentIDs).
		WhereInUUIDs("SchemeID", f.SchemeIDs)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Id lists are comma-separated; unparseable ids are skipped.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v, err := uuid.Parse(values.Get("document_id")); err == nil {
		f.DocumentID = &v
	}

	if v, err := uuid.Parse(values.Get("scheme_id")); err == nil {
		f.SchemeID = &v
	}

	if v := values.Get("run_id"); v != "" {
		f.RunID = &v
	}

	if v := values.Get("run_name"); v != "" {
		f.RunName = &v
	}

	if v := values.Get("provider"); v != "" {
		f.Provider = &v
	}

	if v := values.Get("model"); v != "" {
		f.Model = &v
	}

	f.DocumentIDs = parseIDs(values.Get("document_ids"))
	f.SchemeIDs = parseIDs(values.Get("scheme_ids"))

	return f
}

func parseIDs(s string) []uuid.UUID {
	var ids []uuid.UUID
	for part := range strings.SplitSeq(s, ",") {
		if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func scanResult(s repository.Scanner) (Result, error) {
	var (
		r     Result
		value []byte
	)

	err := s.Scan(
		&r.ID,
		&r.DocumentID,
		&r.SchemeID,
		&r.RunID,
		&r.RunName,
		&r.RunDescription,
		&value,
		&r.Provider,
		&r.Model,
		&r.Timestamp,
		&r.DocumentTitle,
		&r.SchemeName,
	)
	r.Value = value
	return r, err
}
