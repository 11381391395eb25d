// Package schemes implements the scheme definition store: named, ordered
// sets of typed fields plus the instructions and rules that drive
// classification. Schemes are validated when written, so every stored scheme
// compiles.
package schemes

import (
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/internal/validator"
	"github.com/JaimeStill/schemata/pkg/openapi"
)

// Scheme is a stored classification scheme with its ordered fields.
type Scheme struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	ModelInstructions string            `json:"model_instructions"`
	Fields            []fields.Field    `json:"fields"`
	ValidationRules   map[string]string `json:"validation_rules"`
	ResultCount       int               `json:"result_count"`
	DocumentCount     int               `json:"document_count"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Definition returns the compiler input for s.
func (s *Scheme) Definition() compiler.Definition {
	return compiler.Definition{
		Name:         s.Name,
		Description:  s.Description,
		Instructions: s.ModelInstructions,
		Fields:       s.Fields,
		Rules:        s.ValidationRules,
	}
}

// Compile builds the target type for s.
func (s *Scheme) Compile() (*compiler.TargetType, error) {
	return compiler.Compile(s.Definition())
}

// Command carries the authored content of a scheme for create and update.
type Command struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	ModelInstructions string            `json:"model_instructions"`
	Fields            []fields.Field    `json:"fields"`
	ValidationRules   map[string]string `json:"validation_rules,omitempty"`
}

// Validate normalizes the command in place and checks every declaration
// invariant. It returns a *fields.DeclarationError listing all issues.
func (c *Command) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Fields = fields.NormalizeAll(c.Fields)
	if c.ValidationRules == nil {
		c.ValidationRules = map[string]string{}
	} else {
		c.ValidationRules = maps.Clone(c.ValidationRules)
	}

	var named []fields.Issue
	if c.Name == "" {
		named = append(named, fields.Issue{
			Field:      "name",
			Constraint: fields.ConstraintName,
			Message:    "scheme name is required",
		})
	}

	var fieldIssues []fields.Issue
	var decl *fields.DeclarationError
	if errors.As(fields.ValidateFields(c.Fields), &decl) {
		fieldIssues = decl.Issues
	}

	return fields.Join(named, fieldIssues, validator.CheckRules(c.ValidationRules))
}

// Target is the compiled form of a scheme as served to clients.
type Target struct {
	SchemeID uuid.UUID            `json:"scheme_id"`
	Target   *compiler.TargetType `json:"target"`
	Schema   *openapi.Schema      `json:"json_schema"`
}
