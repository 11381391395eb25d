// Package validator checks untrusted classifier output against a compiled
// target type and converts it to typed values. Every violation is collected;
// validation never stops at the first problem.
package validator

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
)

// Validate walks every slot of t against raw. On success it returns a map
// holding only declared slots, typed as int, string, []string, or
// []map[string]any. Undeclared keys are dropped. Rules run only when the
// structural walk found no violations.
func Validate(t *compiler.TargetType, raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Violations: []Violation{{
			Kind:    SchemaMismatch,
			Message: fmt.Sprintf("expected an object, got %s", describe(raw)),
		}}}
	}

	w := &walker{out: make(map[string]any, len(t.Slots))}
	for _, slot := range t.Slots {
		w.slot(slot, obj)
	}

	if len(w.violations) == 0 && len(t.Rules) > 0 {
		w.violations = append(w.violations, evaluateRules(t.Rules, w.out)...)
	}

	if len(w.violations) > 0 {
		return nil, &ValidationError{Violations: w.violations}
	}
	return w.out, nil
}

type walker struct {
	out        map[string]any
	violations []Violation
}

func (w *walker) add(field string, kind Kind, msg string, values ...string) {
	w.violations = append(w.violations, Violation{
		Field:   field,
		Kind:    kind,
		Message: msg,
		Values:  values,
	})
}

func (w *walker) slot(s compiler.Slot, obj map[string]any) {
	v, present := obj[s.Name]
	if !present || v == nil {
		w.add(s.Name, MissingField, "required field is missing")
		return
	}

	switch s.Type {
	case fields.Int:
		w.intSlot(s, v)
	case fields.Str:
		str, ok := v.(string)
		if !ok {
			w.add(s.Name, SchemaMismatch, "expected a string, got "+describe(v))
			return
		}
		w.out[s.Name] = str
	case fields.ListStr:
		w.stringListSlot(s, v)
	case fields.ListDict:
		w.recordListSlot(s, v)
	}
}

func (w *walker) intSlot(s compiler.Slot, v any) {
	n, ok := toInt(v)
	if !ok {
		w.add(s.Name, SchemaMismatch, "expected an integer, got "+describe(v))
		return
	}

	if (s.Min != nil && n < *s.Min) || (s.Max != nil && n > *s.Max) {
		w.add(s.Name, OutOfRange,
			fmt.Sprintf("value %d is outside [%d, %d]", n, deref(s.Min), deref(s.Max)),
			strconv.Itoa(n))
		return
	}

	w.out[s.Name] = n
}

func (w *walker) stringListSlot(s compiler.Slot, v any) {
	items, ok := v.([]any)
	if !ok {
		w.add(s.Name, SchemaMismatch, "expected a list of strings, got "+describe(v))
		return
	}

	before := len(w.violations)
	strs := make([]string, 0, len(items))
	var invalid []string

	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			w.add(fmt.Sprintf("%s[%d]", s.Name, i), SchemaMismatch, "expected a string, got "+describe(item))
			continue
		}
		if s.IsLabelSet() && !slices.Contains(s.Labels, str) {
			invalid = append(invalid, str)
		}
		strs = append(strs, str)
	}

	if len(invalid) > 0 {
		w.add(s.Name, InvalidLabel, fmt.Sprintf("%d value(s) not in the label set", len(invalid)), invalid...)
	}

	if s.MaxItems != nil && len(items) > *s.MaxItems {
		w.add(s.Name, TooManyLabels,
			fmt.Sprintf("%d items exceed the maximum of %d", len(items), *s.MaxItems))
	}

	if len(w.violations) == before {
		w.out[s.Name] = strs
	}
}

func (w *walker) recordListSlot(s compiler.Slot, v any) {
	items, ok := v.([]any)
	if !ok {
		w.add(s.Name, SchemaMismatch, "expected a list of records, got "+describe(v))
		return
	}

	before := len(w.violations)
	records := make([]map[string]any, 0, len(items))

	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", s.Name, i)

		rec, ok := item.(map[string]any)
		if !ok {
			w.add(path, SchemaMismatch, "expected a record, got "+describe(item))
			continue
		}

		typed := make(map[string]any, len(s.Keys))
		for _, key := range s.Keys {
			kv, present := rec[key.Name]
			if !present {
				w.add(path+"."+key.Name, SchemaMismatch, "record is missing declared key")
				continue
			}
			converted, ok := convertKey(key.Type, kv)
			if !ok {
				w.add(path+"."+key.Name, SchemaMismatch,
					fmt.Sprintf("expected %s, got %s", key.Type, describe(kv)))
				continue
			}
			typed[key.Name] = converted
		}

		for _, name := range slices.Sorted(maps.Keys(rec)) {
			if !slices.ContainsFunc(s.Keys, func(k fields.DictKey) bool { return k.Name == name }) {
				w.add(path+"."+name, SchemaMismatch, "record has undeclared key")
			}
		}

		records = append(records, typed)
	}

	if len(w.violations) == before {
		w.out[s.Name] = records
	}
}

func convertKey(t fields.DictKeyType, v any) (any, bool) {
	switch t {
	case fields.KeyStr:
		s, ok := v.(string)
		return s, ok
	case fields.KeyInt:
		return toInt(v)
	case fields.KeyFloat:
		return toFloat(v)
	case fields.KeyBool:
		b, ok := v.(bool)
		return b, ok
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
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

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}

	// Integral floats outside the int64 range would wrap on conversion.
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		if _, ok := toInt(v); ok {
			return "integer"
		}
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
