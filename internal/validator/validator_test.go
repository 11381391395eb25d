package validator_test

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/internal/validator"
)

func ptr(v int) *int { return &v }

func compile(t *testing.T, fs []fields.Field, rules map[string]string) *compiler.TargetType {
	t.Helper()
	target, err := compiler.Compile(compiler.Definition{Name: "test", Fields: fs, Rules: rules})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return target
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func mixedFields() []fields.Field {
	return []fields.Field{
		{Name: "score", Type: fields.Int, ScaleMin: ptr(1), ScaleMax: ptr(5)},
		{Name: "summary", Type: fields.Str},
		{Name: "tags", Type: fields.ListStr, MaxLabels: ptr(3)},
		{Name: "entities", Type: fields.ListDict, DictKeys: []fields.DictKey{
			{Name: "name", Type: fields.KeyStr},
			{Name: "count", Type: fields.KeyInt},
			{Name: "weight", Type: fields.KeyFloat},
			{Name: "primary", Type: fields.KeyBool},
		}},
	}
}

func TestValidateTypedOutput(t *testing.T) {
	target := compile(t, mixedFields(), nil)

	out, err := validator.Validate(target, decode(t, `{
		"score": 4,
		"summary": "fine",
		"tags": ["a", "b"],
		"entities": [{"name": "x", "count": 2, "weight": 1, "primary": true}],
		"extra": "ignored"
	}`))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if out["score"] != 4 {
		t.Errorf("score = %#v, want int 4", out["score"])
	}
	if out["summary"] != "fine" {
		t.Errorf("summary = %#v", out["summary"])
	}
	if tags, ok := out["tags"].([]string); !ok || !slices.Equal(tags, []string{"a", "b"}) {
		t.Errorf("tags = %#v", out["tags"])
	}

	records, ok := out["entities"].([]map[string]any)
	if !ok || len(records) != 1 {
		t.Fatalf("entities = %#v", out["entities"])
	}
	rec := records[0]
	if rec["count"] != 2 || rec["weight"] != 1.0 || rec["primary"] != true || rec["name"] != "x" {
		t.Errorf("record = %#v", rec)
	}

	if _, ok := out["extra"]; ok {
		t.Error("undeclared key should be dropped")
	}
}

func TestValidateSingleViolation(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
		kind  validator.Kind
	}{
		{"int above max", `{"score":6,"summary":"","tags":[],"entities":[]}`, "score", validator.OutOfRange},
		{"int below min", `{"score":0,"summary":"","tags":[],"entities":[]}`, "score", validator.OutOfRange},
		{"int not integral", `{"score":2.5,"summary":"","tags":[],"entities":[]}`, "score", validator.SchemaMismatch},
		{"missing field", `{"score":2,"tags":[],"entities":[]}`, "summary", validator.MissingField},
		{"null field", `{"score":2,"summary":null,"tags":[],"entities":[]}`, "summary", validator.MissingField},
		{"str wrong type", `{"score":2,"summary":7,"tags":[],"entities":[]}`, "summary", validator.SchemaMismatch},
		{"list element wrong type", `{"score":2,"summary":"","tags":["a",1],"entities":[]}`, "tags[1]", validator.SchemaMismatch},
		{"too many items", `{"score":2,"summary":"","tags":["a","b","c","d"],"entities":[]}`, "tags", validator.TooManyLabels},
		{"record missing key", `{"score":2,"summary":"","tags":[],"entities":[{"name":"x","count":1,"weight":0.5}]}`, "entities[0].primary", validator.SchemaMismatch},
		{"record wrong key type", `{"score":2,"summary":"","tags":[],"entities":[{"name":"x","count":1.5,"weight":0.5,"primary":false}]}`, "entities[0].count", validator.SchemaMismatch},
		{"record extra key", `{"score":2,"summary":"","tags":[],"entities":[{"name":"x","count":1,"weight":0.5,"primary":false,"z":1}]}`, "entities[0].z", validator.SchemaMismatch},
		{"int beyond int64", `{"score":1e20,"summary":"","tags":[],"entities":[]}`, "score", validator.SchemaMismatch},
		{"int below int64", `{"score":-1e20,"summary":"","tags":[],"entities":[]}`, "score", validator.SchemaMismatch},
		{"record int beyond int64", `{"score":2,"summary":"","tags":[],"entities":[{"name":"x","count":1e20,"weight":0.5,"primary":false}]}`, "entities[0].count", validator.SchemaMismatch},
		{"record not object", `{"score":2,"summary":"","tags":[],"entities":["x"]}`, "entities[0]", validator.SchemaMismatch},
	}

	target := compile(t, mixedFields(), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := validator.Validate(target, decode(t, tt.doc))
			if out != nil {
				t.Error("output should be nil on failure")
			}

			var verr *validator.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Violations) != 1 {
				t.Fatalf("got %d violations %+v, want exactly 1", len(verr.Violations), verr.Violations)
			}
			v := verr.Violations[0]
			if v.Field != tt.field || v.Kind != tt.kind {
				t.Errorf("violation = %s/%s, want %s/%s", v.Field, v.Kind, tt.field, tt.kind)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	target := compile(t, mixedFields(), nil)

	_, err := validator.Validate(target, decode(t, `{"score":99,"summary":1,"tags":"a"}`))

	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !errors.Is(err, validator.ErrValidation) {
		t.Error("error does not match ErrValidation")
	}
	if len(verr.Violations) != 4 {
		t.Fatalf("got %d violations, want 4: %+v", len(verr.Violations), verr.Violations)
	}
	if verr.Count(validator.MissingField) != 1 || verr.Count(validator.OutOfRange) != 1 {
		t.Errorf("unexpected kinds: %+v", verr.Violations)
	}
}

func TestValidateInvalidLabels(t *testing.T) {
	target := compile(t, []fields.Field{{
		Name:          "categories",
		Type:          fields.ListStr,
		IsSetOfLabels: true,
		Labels:        []string{"Economic Policy", "Foreign Policy"},
	}}, nil)

	tests := []struct {
		name   string
		doc    string
		values []string
	}{
		{"single offender", `{"categories":["Economic Policy","Sports"]}`, []string{"Sports"}},
		{"every offender reported", `{"categories":["Sports","Weather","Foreign Policy"]}`, []string{"Sports", "Weather"}},
		{"case sensitive", `{"categories":["economic policy"]}`, []string{"economic policy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(target, decode(t, tt.doc))

			var verr *validator.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Violations) != 1 {
				t.Fatalf("violations = %+v", verr.Violations)
			}
			v := verr.Violations[0]
			if v.Kind != validator.InvalidLabel || v.Field != "categories" {
				t.Errorf("violation = %+v", v)
			}
			if !slices.Equal(v.Values, tt.values) {
				t.Errorf("values = %v, want %v", v.Values, tt.values)
			}
		})
	}

	if _, err := validator.Validate(target, decode(t, `{"categories":["Foreign Policy"]}`)); err != nil {
		t.Errorf("member label rejected: %v", err)
	}
}

func TestValidateNonObject(t *testing.T) {
	target := compile(t, nil, nil)

	for _, raw := range []any{"text", 1.0, []any{"a"}, nil} {
		_, err := validator.Validate(target, raw)

		var verr *validator.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate(%v): expected *ValidationError, got %v", raw, err)
		}
		if verr.Violations[0].Kind != validator.SchemaMismatch || verr.Violations[0].Field != "" {
			t.Errorf("Validate(%v) = %+v", raw, verr.Violations)
		}
	}
}

func TestValidateImplicitField(t *testing.T) {
	target := compile(t, nil, nil)

	out, err := validator.Validate(target, map[string]any{"text": "a summary"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if out["text"] != "a summary" {
		t.Errorf("text = %#v", out["text"])
	}
}

func TestValidateRules(t *testing.T) {
	fs := []fields.Field{
		{Name: "score", Type: fields.Int, ScaleMin: ptr(0), ScaleMax: ptr(10)},
		{Name: "tags", Type: fields.ListStr},
	}
	target := compile(t, fs, map[string]string{
		"tagged_when_high": "value.score < 5 || size(value.tags) > 0",
	})

	if _, err := validator.Validate(target, decode(t, `{"score":8,"tags":["x"]}`)); err != nil {
		t.Errorf("satisfied rule rejected: %v", err)
	}
	if _, err := validator.Validate(target, decode(t, `{"score":2,"tags":[]}`)); err != nil {
		t.Errorf("satisfied rule rejected: %v", err)
	}

	_, err := validator.Validate(target, decode(t, `{"score":8,"tags":[]}`))
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Violations) != 1 || verr.Violations[0].Kind != validator.RuleFailed {
		t.Errorf("violations = %+v", verr.Violations)
	}
	if verr.Violations[0].Field != "rules.tagged_when_high" {
		t.Errorf("field = %s", verr.Violations[0].Field)
	}

	_, err = validator.Validate(target, decode(t, `{"score":80,"tags":[]}`))
	if !errors.As(err, &verr) || verr.Count(validator.RuleFailed) != 0 {
		t.Errorf("rules should not run when structural validation fails: %v", err)
	}
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name   string
		rules  map[string]string
		issues int
	}{
		{"nil", nil, 0},
		{"valid", map[string]string{"a": "value.score > 1", "b": "has(value.tags)"}, 0},
		{"syntax error", map[string]string{"a": "value.score >"}, 1},
		{"non bool", map[string]string{"a": "1 + 2"}, 1},
		{"empty name", map[string]string{"": "true"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validator.CheckRules(tt.rules)
			if len(issues) != tt.issues {
				t.Fatalf("issues = %+v, want %d", issues, tt.issues)
			}
			for _, issue := range issues {
				if issue.Constraint != fields.ConstraintRule {
					t.Errorf("constraint = %s", issue.Constraint)
				}
			}
		})
	}
}
