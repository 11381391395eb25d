// Package fields defines the typed field declarations that make up a
// classification scheme. A Field is a tagged union over four types; only the
// constraints belonging to the declared type are meaningful.
package fields

import "strings"

// Type identifies the shape of value a classifier must produce for a field.
// The string values match the names used by authoring clients.
type Type string

const (
	Int      Type = "int"
	Str      Type = "str"
	ListStr  Type = "List[str]"
	ListDict Type = "List[Dict[str, any]]"
)

// Valid reports whether t is one of the four field types.
func (t Type) Valid() bool {
	switch t {
	case Int, Str, ListStr, ListDict:
		return true
	}
	return false
}

// DictKeyType is the primitive type of a single key in a ListDict record.
type DictKeyType string

const (
	KeyStr   DictKeyType = "str"
	KeyInt   DictKeyType = "int"
	KeyFloat DictKeyType = "float"
	KeyBool  DictKeyType = "bool"
)

// Valid reports whether k is a supported record key type.
func (k DictKeyType) Valid() bool {
	switch k {
	case KeyStr, KeyInt, KeyFloat, KeyBool:
		return true
	}
	return false
}

// DictKey declares one named, typed key of a ListDict record.
type DictKey struct {
	Name string      `json:"name"`
	Type DictKeyType `json:"type"`
}

// Field is one typed, constrained slot within a scheme.
//
// Int uses ScaleMin and ScaleMax. ListStr uses IsSetOfLabels, Labels, and
// MaxLabels. ListDict uses DictKeys. Str carries no constraints.
type Field struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          Type      `json:"type"`
	ScaleMin      *int      `json:"scale_min,omitempty"`
	ScaleMax      *int      `json:"scale_max,omitempty"`
	IsSetOfLabels bool      `json:"is_set_of_labels,omitempty"`
	Labels        []string  `json:"labels,omitempty"`
	MaxLabels     *int      `json:"max_labels,omitempty"`
	DictKeys      []DictKey `json:"dict_keys,omitempty"`
}

// Normalize returns a copy of f with its name trimmed and every constraint
// that does not belong to its type cleared. Slices are copied so the result
// shares no memory with f.
func (f Field) Normalize() Field {
	n := Field{
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Type:        f.Type,
	}

	switch f.Type {
	case Int:
		n.ScaleMin = clonePtr(f.ScaleMin)
		n.ScaleMax = clonePtr(f.ScaleMax)
	case ListStr:
		n.IsSetOfLabels = f.IsSetOfLabels
		n.MaxLabels = clonePtr(f.MaxLabels)
		if f.IsSetOfLabels {
			n.Labels = append([]string(nil), f.Labels...)
		}
	case ListDict:
		n.DictKeys = append([]DictKey(nil), f.DictKeys...)
	}

	return n
}

// IsBinary reports whether f is an Int scale bounded to exactly [0, 1].
func (f Field) IsBinary() bool {
	return f.Type == Int &&
		f.ScaleMin != nil && *f.ScaleMin == 0 &&
		f.ScaleMax != nil && *f.ScaleMax == 1
}

// NormalizeAll applies Normalize to every field, preserving order.
func NormalizeAll(fs []Field) []Field {
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = f.Normalize()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
