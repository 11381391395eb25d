package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/internal/gateway"
)

// TextRequest classifies ad-hoc text under a scheme without storing anything.
type TextRequest struct {
	SchemeID uuid.UUID
	Text     string
	Provider string
	Model    string
	APIKey   string
}

// TextOutcome is the validated classifier output for ad-hoc text.
type TextOutcome struct {
	SchemeID uuid.UUID
	Fields   []fields.Field
	Value    map[string]any
	Provider string
	Model    string
}

// ExecuteText compiles the scheme, classifies req.Text, and validates the
// output. The result store is not consulted or written.
func ExecuteText(ctx context.Context, rt *Runtime, req TextRequest) (*TextOutcome, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	scheme, err := rt.Schemes.Find(ctx, req.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("load scheme %s: %w", req.SchemeID, err)
	}

	target, err := scheme.Compile()
	if err != nil {
		return nil, err
	}

	value, out, err := classify(ctx, rt, target, gateway.Request{
		Target:   target,
		Text:     req.Text,
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		return nil, err
	}

	return &TextOutcome{
		SchemeID: req.SchemeID,
		Fields:   scheme.Fields,
		Value:    value,
		Provider: out.Provider,
		Model:    out.Model,
	}, nil
}
