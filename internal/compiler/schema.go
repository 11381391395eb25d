package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/pkg/openapi"
)

const schemaResource = "target.json"

// JSONSchema renders the target as a closed JSON Schema object. Every slot is
// required, which is what strict structured-output providers expect.
func (t *TargetType) JSONSchema() *openapi.Schema {
	closed := false
	s := &openapi.Schema{
		Title:                t.Name,
		Type:                 "object",
		Description:          t.Instructions,
		Properties:           make(map[string]*openapi.Schema, len(t.Slots)),
		Required:             t.SlotNames(),
		AdditionalProperties: &closed,
	}

	for _, slot := range t.Slots {
		s.Properties[slot.Name] = slot.schema()
	}

	return s
}

func (s Slot) schema() *openapi.Schema {
	switch s.Type {
	case fields.Int:
		out := &openapi.Schema{Type: "integer", Description: s.Description}
		if s.Min != nil {
			v := float64(*s.Min)
			out.Minimum = &v
		}
		if s.Max != nil {
			v := float64(*s.Max)
			out.Maximum = &v
		}
		return out
	case fields.ListStr:
		items := &openapi.Schema{Type: "string"}
		for _, label := range s.Labels {
			items.Enum = append(items.Enum, label)
		}
		return &openapi.Schema{
			Type:        "array",
			Description: s.Description,
			Items:       items,
			MaxItems:    s.MaxItems,
		}
	case fields.ListDict:
		closed := false
		record := &openapi.Schema{
			Type:                 "object",
			Properties:           make(map[string]*openapi.Schema, len(s.Keys)),
			AdditionalProperties: &closed,
		}
		for _, key := range s.Keys {
			record.Properties[key.Name] = &openapi.Schema{Type: keySchemaType(key.Type)}
			record.Required = append(record.Required, key.Name)
		}
		return &openapi.Schema{
			Type:        "array",
			Description: s.Description,
			Items:       record,
		}
	default:
		return &openapi.Schema{Type: "string", Description: s.Description}
	}
}

func keySchemaType(k fields.DictKeyType) string {
	switch k {
	case fields.KeyInt:
		return "integer"
	case fields.KeyFloat:
		return "number"
	case fields.KeyBool:
		return "boolean"
	default:
		return "string"
	}
}

// SchemaJSON returns the serialized JSON Schema sent to providers.
func (t *TargetType) SchemaJSON() ([]byte, error) {
	return json.Marshal(t.JSONSchema())
}

// Check validates a decoded JSON document against the target's JSON Schema.
// It is a structural pre-check; the validator package remains the authority
// on typed violations.
func (t *TargetType) Check(doc any) error {
	schema, err := t.compiledSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}

// compiled holds JSON Schemas by their serialized form. Targets compiled from
// the same scheme revision share one entry.
var compiled sync.Map

func (t *TargetType) compiledSchema() (*jsonschema.Schema, error) {
	data, err := t.SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal target schema: %w", err)
	}

	if s, ok := compiled.Load(string(data)); ok {
		return s.(*jsonschema.Schema), nil
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load target schema: %w", err)
	}

	schema, err := c.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile target schema: %w", err)
	}

	actual, _ := compiled.LoadOrStore(string(data), schema)
	return actual.(*jsonschema.Schema), nil
}
