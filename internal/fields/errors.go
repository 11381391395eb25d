package fields

import (
	"errors"
	"strings"
)

// ErrInvalidDeclaration is matched by every DeclarationError.
var ErrInvalidDeclaration = errors.New("invalid field declaration")

// Constraint names the declaration invariant an Issue violates.
type Constraint string

const (
	ConstraintName          Constraint = "name"
	ConstraintType          Constraint = "type"
	ConstraintScaleBounds   Constraint = "scale_bounds"
	ConstraintLabels        Constraint = "labels"
	ConstraintMaxLabels     Constraint = "max_labels"
	ConstraintDictKeys      Constraint = "dict_keys"
	ConstraintDuplicateName Constraint = "duplicate_name"
	ConstraintRule          Constraint = "validation_rule"
)

// Issue is a single violated declaration invariant.
// Field is a path such as "fields[2].scale_max".
type Issue struct {
	Field      string     `json:"field"`
	Constraint Constraint `json:"constraint"`
	Message    string     `json:"message"`
}

// DeclarationError reports every invariant violated by a scheme or field
// declaration. It is returned at authoring time, never at classification time.
type DeclarationError struct {
	Issues []Issue `json:"issues"`
}

func (e *DeclarationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Message
	}
	return ErrInvalidDeclaration.Error() + ": " + strings.Join(parts, "; ")
}

func (e *DeclarationError) Unwrap() error {
	return ErrInvalidDeclaration
}

// Has reports whether any issue violates c.
func (e *DeclarationError) Has(c Constraint) bool {
	for _, issue := range e.Issues {
		if issue.Constraint == c {
			return true
		}
	}
	return false
}

// Join combines issue lists into a DeclarationError, or returns nil when
// there are no issues.
func Join(issues ...[]Issue) error {
	var all []Issue
	for _, list := range issues {
		all = append(all, list...)
	}
	if len(all) == 0 {
		return nil
	}
	return &DeclarationError{Issues: all}
}
