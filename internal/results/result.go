// Package results implements the classification result store. A result is
// immutable and unique per (document, scheme, run); writing the same key
// twice returns the first stored result.
package results

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/display"
)

// DefaultRunID scopes results written without an explicit run.
const DefaultRunID = "default"

// Result is a stored classification outcome. DisplayValue is derived on read
// and never persisted.
type Result struct {
	ID             uuid.UUID       `json:"id"`
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentTitle  string          `json:"document_title"`
	SchemeID       uuid.UUID       `json:"scheme_id"`
	SchemeName     string          `json:"scheme_name"`
	RunID          string          `json:"run_id"`
	RunName        *string         `json:"run_name,omitempty"`
	RunDescription *string         `json:"run_description,omitempty"`
	Value          json.RawMessage `json:"value"`
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	Timestamp      time.Time       `json:"timestamp"`
	DisplayValue   any             `json:"display_value,omitempty"`
}

// Key identifies a result by its natural idempotency key.
type Key struct {
	DocumentID uuid.UUID
	SchemeID   uuid.UUID
	RunID      string
}

// Normalize applies the default run id.
func (k Key) Normalize() Key {
	k.RunID = NormalizeRunID(k.RunID)
	return k
}

// String renders the key for logging and lock names.
func (k Key) String() string {
	return k.DocumentID.String() + "/" + k.SchemeID.String() + "/" + NormalizeRunID(k.RunID)
}

// NormalizeRunID trims id and substitutes DefaultRunID when empty.
func NormalizeRunID(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return DefaultRunID
	}
	return id
}

// PutCommand carries a validated value to store under its key.
type PutCommand struct {
	Key
	RunName        *string
	RunDescription *string
	Value          any
	Provider       string
	Model          string
	Timestamp      time.Time
}

// EncodeValue serializes v for storage. Values that do not encode to a JSON
// object are boxed as {"value": v}.
func EncodeValue(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return data, nil
	}

	return json.Marshal(map[string]any{display.WrappedKey: v})
}
