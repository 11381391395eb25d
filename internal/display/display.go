// Package display derives presentable values from stored classification
// output. Nothing it produces is persisted; results re-render against the
// scheme's current fields on every read.
package display

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
)

// NotApplicable is the canonical rendering of any "n/a" string.
const NotApplicable = "N/A"

// WrappedKey holds scalar values that were boxed into an object for storage.
const WrappedKey = "value"

// strategy is one entry of the resolution table. The first entry whose match
// returns true renders the value.
type strategy struct {
	name   string
	match  func(fs []fields.Field, v any) bool
	render func(fs []fields.Field, v any) any
}

var strategies = []strategy{
	{name: "text", match: isString, render: renderText},
	{name: "binary", match: isBinary, render: renderBinary},
	{name: "number", match: isNumber, render: passThrough},
	{name: "record", match: isProjectable, render: renderRecord},
	{name: "list", match: isList, render: passThrough},
}

// Display renders value for presentation against fs, the scheme's fields in
// declaration order. A boxed scalar ({"value": x} where "value" is not a
// declared field) is unwrapped first. A scheme without fields is displayed
// against its implicit text field.
func Display(fs []fields.Field, value any) any {
	fs = effective(fs)
	value = unwrap(fs, value)

	for _, s := range strategies {
		if s.match(fs, value) {
			return s.render(fs, value)
		}
	}
	return stringify(value)
}

// DisplayJSON decodes a stored JSON payload and renders it.
func DisplayJSON(fs []fields.Field, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return Display(fs, nil), nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode stored value: %w", err)
	}
	return Display(fs, v), nil
}

// Strategy reports which resolution step renders value. Unmatched values
// resolve to "stringify".
func Strategy(fs []fields.Field, value any) string {
	fs = effective(fs)
	value = unwrap(fs, value)
	for _, s := range strategies {
		if s.match(fs, value) {
			return s.name
		}
	}
	return "stringify"
}

func effective(fs []fields.Field) []fields.Field {
	if len(fs) > 0 {
		return fs
	}
	return []fields.Field{{Name: compiler.ImplicitField, Type: fields.Str}}
}

func unwrap(fs []fields.Field, value any) any {
	obj, ok := value.(map[string]any)
	if !ok || len(obj) != 1 {
		return value
	}
	inner, ok := obj[WrappedKey]
	if !ok || declared(fs, WrappedKey) {
		return value
	}
	return inner
}

func declared(fs []fields.Field, name string) bool {
	for _, f := range fs {
		if f.Name == name {
			return true
		}
	}
	return false
}

func isString(_ []fields.Field, v any) bool {
	_, ok := v.(string)
	return ok
}

func renderText(_ []fields.Field, v any) any {
	s := v.(string)
	if strings.EqualFold(s, "n/a") {
		return NotApplicable
	}
	return s
}

func isNumber(_ []fields.Field, v any) bool {
	_, ok := number(v)
	return ok
}

func isBinary(fs []fields.Field, v any) bool {
	return len(fs) > 0 && fs[0].IsBinary() && isNumber(fs, v)
}

func renderBinary(_ []fields.Field, v any) any {
	n, _ := number(v)
	return n > 0.5
}

func passThrough(_ []fields.Field, v any) any {
	return v
}

func isProjectable(fs []fields.Field, v any) bool {
	_, ok := v.(map[string]any)
	return ok && len(fs) > 0
}

func renderRecord(fs []fields.Field, v any) any {
	obj := v.(map[string]any)

	rec := Record{}
	for _, f := range fs {
		if val, ok := obj[f.Name]; ok {
			rec.set(f.Name, val)
		}
	}

	if rec.Len() == 0 {
		return obj
	}
	return rec
}

func isList(_ []fields.Field, v any) bool {
	_, ok := v.([]any)
	return ok
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return NotApplicable
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
