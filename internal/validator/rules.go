package validator

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
)

// RuleVariable is the name under which typed output is exposed to rules.
const RuleVariable = "value"

var ruleEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(RuleVariable, cel.MapType(cel.StringType, cel.DynType)),
	)
})

// CompileRule parses and type-checks a rule expression. The expression must
// evaluate to bool (or dyn, checked at evaluation).
func CompileRule(expr string) (cel.Program, error) {
	env, err := ruleEnv()
	if err != nil {
		return nil, fmt.Errorf("rule environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rule must evaluate to bool, got %s", out)
	}

	return env.Program(ast)
}

// CheckRules compiles every rule and reports failures as declaration issues
// under "validation_rules.<name>".
func CheckRules(rules map[string]string) []fields.Issue {
	var issues []fields.Issue

	for _, name := range slices.Sorted(maps.Keys(rules)) {
		path := "validation_rules." + name
		if name == "" {
			issues = append(issues, fields.Issue{
				Field:      "validation_rules",
				Constraint: fields.ConstraintRule,
				Message:    "rule name is required",
			})
			continue
		}
		if _, err := CompileRule(rules[name]); err != nil {
			issues = append(issues, fields.Issue{
				Field:      path,
				Constraint: fields.ConstraintRule,
				Message:    err.Error(),
			})
		}
	}

	return issues
}

func evaluateRules(rules []compiler.Rule, typed map[string]any) []Violation {
	var violations []Violation
	vars := map[string]any{RuleVariable: typed}

	for _, rule := range rules {
		field := "rules." + rule.Name

		prg, err := CompileRule(rule.Expression)
		if err != nil {
			violations = append(violations, Violation{
				Field: field, Kind: RuleFailed,
				Message: fmt.Sprintf("rule does not compile: %v", err),
			})
			continue
		}

		out, _, err := prg.Eval(vars)
		if err != nil {
			violations = append(violations, Violation{
				Field: field, Kind: RuleFailed,
				Message: fmt.Sprintf("rule evaluation failed: %v", err),
			})
			continue
		}

		pass, ok := out.Value().(bool)
		if !ok {
			violations = append(violations, Violation{
				Field: field, Kind: RuleFailed,
				Message: fmt.Sprintf("rule returned %T, want bool", out.Value()),
			})
			continue
		}
		if !pass {
			violations = append(violations, Violation{
				Field: field, Kind: RuleFailed,
				Message: "rule not satisfied: " + rule.Expression,
			})
		}
	}

	return violations
}
