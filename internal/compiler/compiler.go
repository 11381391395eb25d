// Package compiler turns a scheme definition into a TargetType: the
// provider-neutral structured-output description a classifier is asked to
// produce. Compilation is pure; identical definitions yield identical targets.
package compiler

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/JaimeStill/schemata/internal/fields"
)

// ErrCompilation indicates a definition reached the compiler without passing
// declaration validation. It should be unreachable from the HTTP surface.
var ErrCompilation = errors.New("scheme compilation failed")

const (
	// ImplicitField is the slot name used when a scheme declares no fields.
	ImplicitField = "text"

	implicitDescription = "Text classification result"
	defaultInstructions = "Default classification model"
)

// Definition is the compiler input: everything about a scheme that shapes
// the target type.
type Definition struct {
	Name         string
	Description  string
	Instructions string
	Fields       []fields.Field
	Rules        map[string]string
}

// Slot is one compiled output field.
type Slot struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        fields.Type      `json:"type"`
	Min         *int             `json:"min,omitempty"`
	Max         *int             `json:"max,omitempty"`
	Labels      []string         `json:"labels,omitempty"`
	MaxItems    *int             `json:"max_items,omitempty"`
	Keys        []fields.DictKey `json:"keys,omitempty"`
}

// Rule is a named cross-field predicate evaluated after type validation.
type Rule struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// TargetType is the compiled output contract for one scheme.
type TargetType struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Slots        []Slot `json:"slots"`
	Rules        []Rule `json:"rules,omitempty"`
	Implicit     bool   `json:"implicit,omitempty"`
}

// Compile builds the TargetType for def. Slots follow field declaration order
// and rules are ordered by name.
func Compile(def Definition) (*TargetType, error) {
	normalized := fields.NormalizeAll(def.Fields)
	if err := fields.ValidateFields(normalized); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompilation, def.Name, err)
	}

	t := &TargetType{
		Name:         def.Name,
		Instructions: instructions(def),
	}

	if len(normalized) == 0 {
		t.Implicit = true
		t.Slots = []Slot{{
			Name:        ImplicitField,
			Description: implicitDescription,
			Type:        fields.Str,
		}}
	} else {
		t.Slots = make([]Slot, len(normalized))
		for i, f := range normalized {
			t.Slots[i] = compileSlot(f)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(def.Rules)) {
		t.Rules = append(t.Rules, Rule{Name: name, Expression: def.Rules[name]})
	}

	// Providers only ever receive a schema that compiles.
	if _, err := t.compiledSchema(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompilation, def.Name, err)
	}

	return t, nil
}

// Slot returns the slot with the given name.
func (t *TargetType) Slot(name string) (Slot, bool) {
	for _, s := range t.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotNames returns slot names in declaration order.
func (t *TargetType) SlotNames() []string {
	names := make([]string, len(t.Slots))
	for i, s := range t.Slots {
		names[i] = s.Name
	}
	return names
}

// IsLabelSet reports whether the slot restricts its items to Labels.
func (s Slot) IsLabelSet() bool {
	return s.Type == fields.ListStr && len(s.Labels) > 0
}

func instructions(def Definition) string {
	if v := strings.TrimSpace(def.Instructions); v != "" {
		return v
	}
	if v := strings.TrimSpace(def.Description); v != "" {
		return v
	}
	return defaultInstructions
}

func compileSlot(f fields.Field) Slot {
	s := Slot{
		Name:        f.Name,
		Description: f.Description,
		Type:        f.Type,
	}

	switch f.Type {
	case fields.Int:
		s.Min = f.ScaleMin
		s.Max = f.ScaleMax
		if s.Description == "" {
			s.Description = fmt.Sprintf("Scale from %d to %d", *f.ScaleMin, *f.ScaleMax)
		}
	case fields.ListStr:
		s.MaxItems = f.MaxLabels
		if f.IsSetOfLabels {
			s.Labels = f.Labels
			if s.Description == "" {
				s.Description = "Select from: " + strings.Join(f.Labels, ", ")
			}
		}
	case fields.ListDict:
		s.Keys = f.DictKeys
	}

	return s
}
