package documents

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

const resultCountExpr = "(SELECT COUNT(*) FROM public.results r WHERE r.document_id = d.id)"

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("text_content", "TextContent").
	ProjectExpr(resultCountExpr, "ResultCount").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Newest first.
var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters narrows document listings. Title is a case-insensitive substring;
// HasResults selects documents that have (or lack) stored results.
type Filters struct {
	Title      *string `json:"title,omitempty"`
	HasResults *bool   `json:"has_results,omitempty"`
}

// Apply adds the filter conditions to b.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereNonZero("ResultCount", f.HasResults)
}

// FiltersFromQuery reads ?title= and ?has_results=. An unparseable
// has_results is ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}
	if b, err := strconv.ParseBool(values.Get("has_results")); err == nil {
		f.HasResults = &b
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(&d.ID, &d.Title, &d.TextContent, &d.ResultCount, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
