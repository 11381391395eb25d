package validator

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("classification output failed validation")

// Kind categorizes a single violation.
type Kind string

const (
	MissingField   Kind = "MissingField"
	OutOfRange     Kind = "OutOfRange"
	InvalidLabel   Kind = "InvalidLabel"
	SchemaMismatch Kind = "SchemaMismatch"
	TooManyLabels  Kind = "TooManyLabels"
	RuleFailed     Kind = "RuleFailed"
)

// Violation describes one way classifier output fails its target type.
// Field is a path such as "entities[2].weight"; the root is "".
type Violation struct {
	Field   string   `json:"field"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Values  []string `json:"values,omitempty"`
}

// ValidationError carries the complete list of violations found in one pass.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field == "" {
			parts[i] = v.Message
			continue
		}
		parts[i] = v.Field + ": " + v.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Count returns how many violations are of kind k.
func (e *ValidationError) Count(k Kind) int {
	n := 0
	for _, v := range e.Violations {
		if v.Kind == k {
			n++
		}
	}
	return n
}
