package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SortField orders by a projected view property.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "Name,-CreatedAt" into sort fields; a leading "-"
// sorts descending. Empty input yields nil.
func ParseSortFields(s string) []SortField {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// params accumulates positional arguments and hands out their placeholders.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// predicate renders one WHERE term, binding its arguments as it goes.
type predicate func(p *params) string

// Builder assembles SELECT statements over a ProjectionMap. Conditions are
// ANDed together and numbered in the order they were added.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder starts a query over projection. defaultSort applies when no
// explicit order is set.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// OrderByFields replaces the default order. Fields the projection does not
// map are ignored.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals matches field = value. Nil values add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(p *params) string {
		return col + " = " + p.bind(value)
	})
}

// WhereNullable matches field = value, or field IS NULL when value is nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	col := b.projection.Column(field)
	if isNil(value) {
		return b.where(func(*params) string { return col + " IS NULL" })
	}
	return b.WhereEquals(field, value)
}

// WhereContains matches a case-insensitive substring. Nil or empty values
// add nothing.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.WhereSearch(value, field)
}

// WhereSearch matches a case-insensitive substring in any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}

	return b.where(func(p *params) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + p.bind(pattern)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

// WhereNonZero matches field > 0 when want is true and field = 0 when it is
// false. Nil adds nothing. Used with count projections.
func (b *Builder) WhereNonZero(field string, want *bool) *Builder {
	if want == nil {
		return b
	}
	col := b.projection.Column(field)
	op := " = 0"
	if *want {
		op = " > 0"
	}
	return b.where(func(*params) string { return col + op })
}

// WhereIn matches field against a value list. An empty list adds nothing.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(p *params) string {
		marks := make([]string, len(values))
		for i, v := range values {
			marks[i] = p.bind(v)
		}
		return col + " IN (" + strings.Join(marks, ", ") + ")"
	})
}

// WhereInUUIDs is WhereIn for a list of IDs.
func (b *Builder) WhereInUUIDs(field string, ids []uuid.UUID) *Builder {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return b.WhereIn(field, values)
}

func (b *Builder) where(pred predicate) *Builder {
	b.predicates = append(b.predicates, pred)
	return b
}

// Build returns the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	var p params
	return b.selectFrom() + b.whereClause(&p) + b.orderClause(), p.args
}

// BuildCount returns SELECT COUNT(*) over the filtered rows.
func (b *Builder) BuildCount() (string, []any) {
	var p params
	return "SELECT COUNT(*) FROM " + b.projection.From() + b.whereClause(&p), p.args
}

// BuildPage returns one page of the filtered, ordered SELECT. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, (page-1)*pageSize), args
}

// BuildSingle selects the row whose idField equals id, ignoring any
// conditions already added.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return fmt.Sprintf("%s WHERE %s = $1", b.selectFrom(), b.projection.Column(idField)), []any{id}
}

// BuildSingleOrNull selects at most one row matching the conditions.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	var p params
	return b.selectFrom() + b.whereClause(&p) + " LIMIT 1", p.args
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) whereClause(p *params) string {
	if len(b.predicates) == 0 {
		return ""
	}
	terms := make([]string, len(b.predicates))
	for i, pred := range b.predicates {
		terms[i] = pred(p)
	}
	return " WHERE " + strings.Join(terms, " AND ")
}

func (b *Builder) orderClause() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	var terms []string
	for _, f := range fields {
		// client-supplied sort fields never reach SQL unless mapped
		if !b.projection.Has(f.Field) {
			continue
		}
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms = append(terms, b.projection.Column(f.Field)+dir)
	}

	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
