package schemes

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/pkg/query"
	"github.com/JaimeStill/schemata/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "schemes", "s").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("model_instructions", "ModelInstructions").
	Project("validation_rules", "ValidationRules").
	ProjectExpr("(SELECT COUNT(*) FROM public.results r WHERE r.scheme_id = s.id)", "ResultCount").
	ProjectExpr("(SELECT COUNT(DISTINCT r.document_id) FROM public.results r WHERE r.scheme_id = s.id)", "DocumentCount").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

var fieldProjection = query.
	NewProjectionMap("public", "scheme_fields", "f").
	Project("id", "ID").
	Project("scheme_id", "SchemeID").
	Project("position", "Position").
	Project("name", "Name").
	Project("description", "Description").
	Project("type", "Type").
	Project("scale_min", "ScaleMin").
	Project("scale_max", "ScaleMax").
	Project("is_set_of_labels", "IsSetOfLabels").
	ProjectExpr("array_to_json(f.labels)", "Labels").
	Project("max_labels", "MaxLabels")

var keyProjection = query.
	NewProjectionMap("public", "scheme_field_keys", "k").
	Project("field_id", "FieldID").
	Project("position", "Position").
	Project("name", "Name").
	Project("type", "Type").
	Join("public", "scheme_fields", "f", "JOIN", "f.id = k.field_id").
	Project("scheme_id", "SchemeID")

// Filters contains optional filtering criteria for scheme queries.
// Name uses case-insensitive contains matching.
type Filters struct {
	Name *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	return f
}

func scanScheme(s repository.Scanner) (Scheme, error) {
	var (
		sc    Scheme
		rules []byte
	)

	err := s.Scan(
		&sc.ID,
		&sc.Name,
		&sc.Description,
		&sc.ModelInstructions,
		&rules,
		&sc.ResultCount,
		&sc.DocumentCount,
		&sc.CreatedAt,
		&sc.UpdatedAt,
	)
	if err != nil {
		return sc, err
	}

	sc.ValidationRules = map[string]string{}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &sc.ValidationRules); err != nil {
			return sc, fmt.Errorf("decode validation rules: %w", err)
		}
	}

	return sc, nil
}

type fieldRow struct {
	id       uuid.UUID
	schemeID uuid.UUID
	position int
	field    fields.Field
}

func scanField(s repository.Scanner) (fieldRow, error) {
	var (
		row    fieldRow
		typ    string
		labels []byte
	)

	err := s.Scan(
		&row.id,
		&row.schemeID,
		&row.position,
		&row.field.Name,
		&row.field.Description,
		&typ,
		&row.field.ScaleMin,
		&row.field.ScaleMax,
		&row.field.IsSetOfLabels,
		&labels,
		&row.field.MaxLabels,
	)
	if err != nil {
		return row, err
	}

	row.field.Type = fields.Type(typ)
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &row.field.Labels); err != nil {
			return row, fmt.Errorf("decode labels: %w", err)
		}
	}

	return row, nil
}

type keyRow struct {
	fieldID  uuid.UUID
	position int
	key      fields.DictKey
	schemeID uuid.UUID
}

func scanKey(s repository.Scanner) (keyRow, error) {
	var (
		row keyRow
		typ string
	)

	err := s.Scan(&row.fieldID, &row.position, &row.key.Name, &typ, &row.schemeID)
	row.key.Type = fields.DictKeyType(typ)
	return row, err
}

// assemble attaches field rows and their keys to the schemes they belong
// to. Rows are expected in position order.
func assemble(list []Scheme, rows []fieldRow, keys []keyRow) {
	byField := make(map[uuid.UUID][]fields.DictKey)
	for _, k := range keys {
		byField[k.fieldID] = append(byField[k.fieldID], k.key)
	}

	byScheme := make(map[uuid.UUID][]fields.Field)
	for _, row := range rows {
		f := row.field
		f.DictKeys = byField[row.id]
		byScheme[row.schemeID] = append(byScheme[row.schemeID], f)
	}

	for i := range list {
		list[i].Fields = byScheme[list[i].ID]
		if list[i].Fields == nil {
			list[i].Fields = []fields.Field{}
		}
	}
}
