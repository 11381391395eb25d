package compiler_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/fields"
)

func ptr(v int) *int { return &v }

func sentimentDefinition() compiler.Definition {
	return compiler.Definition{
		Name:        "sentiment",
		Description: "Rates tone",
		Fields: []fields.Field{
			{Name: "score", Type: fields.Int, ScaleMin: ptr(1), ScaleMax: ptr(5)},
			{Name: "tone", Type: fields.ListStr, IsSetOfLabels: true, Labels: []string{"pos", "neg", "neutral"}, MaxLabels: ptr(1)},
			{Name: "summary", Type: fields.Str, Description: "One sentence"},
			{Name: "entities", Type: fields.ListDict, DictKeys: []fields.DictKey{
				{Name: "name", Type: fields.KeyStr},
				{Name: "weight", Type: fields.KeyFloat},
			}},
		},
		Rules: map[string]string{
			"z_last":  "true",
			"a_first": "value.score >= 1",
		},
	}
}

func TestCompile(t *testing.T) {
	target, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if got := target.SlotNames(); !slices.Equal(got, []string{"score", "tone", "summary", "entities"}) {
		t.Errorf("slot order = %v", got)
	}
	if target.Instructions != "Rates tone" {
		t.Errorf("Instructions = %q, want description fallback", target.Instructions)
	}
	if target.Implicit {
		t.Error("Implicit should be false when fields are declared")
	}

	score, _ := target.Slot("score")
	if *score.Min != 1 || *score.Max != 5 {
		t.Errorf("score bounds = [%d, %d]", *score.Min, *score.Max)
	}
	if score.Description != "Scale from 1 to 5" {
		t.Errorf("score description = %q", score.Description)
	}

	tone, _ := target.Slot("tone")
	if !tone.IsLabelSet() || *tone.MaxItems != 1 {
		t.Errorf("tone = %+v", tone)
	}
	if tone.Description != "Select from: pos, neg, neutral" {
		t.Errorf("tone description = %q", tone.Description)
	}

	summary, _ := target.Slot("summary")
	if summary.Description != "One sentence" {
		t.Errorf("explicit description overwritten: %q", summary.Description)
	}

	if len(target.Rules) != 2 || target.Rules[0].Name != "a_first" {
		t.Errorf("rules not sorted: %+v", target.Rules)
	}
}

func TestCompileImplicitField(t *testing.T) {
	target, err := compiler.Compile(compiler.Definition{Name: "free"})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if !target.Implicit {
		t.Error("Implicit should be true")
	}
	if len(target.Slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(target.Slots))
	}
	slot := target.Slots[0]
	if slot.Name != compiler.ImplicitField || slot.Type != fields.Str {
		t.Errorf("implicit slot = %+v", slot)
	}
	if target.Instructions != "Default classification model" {
		t.Errorf("Instructions = %q", target.Instructions)
	}
}

func TestCompileInstructionsPrecedence(t *testing.T) {
	target, err := compiler.Compile(compiler.Definition{
		Name:         "x",
		Description:  "desc",
		Instructions: "  Read carefully.  ",
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if target.Instructions != "Read carefully." {
		t.Errorf("Instructions = %q", target.Instructions)
	}
}

func TestCompileDeterministic(t *testing.T) {
	a, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}
	b, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("identical definitions compiled to different targets")
	}

	sa, _ := a.SchemaJSON()
	sb, _ := b.SchemaJSON()
	if string(sa) != string(sb) {
		t.Error("identical definitions produced different schemas")
	}
}

func TestCompileDoesNotAliasDefinition(t *testing.T) {
	def := sentimentDefinition()
	target, err := compiler.Compile(def)
	if err != nil {
		t.Fatal(err)
	}

	def.Fields[1].Labels[0] = "mutated"

	tone, _ := target.Slot("tone")
	if tone.Labels[0] != "pos" {
		t.Error("target shares label storage with the definition")
	}
}

func TestCompileRejectsInvalidDefinition(t *testing.T) {
	_, err := compiler.Compile(compiler.Definition{
		Name:   "broken",
		Fields: []fields.Field{{Name: "score", Type: fields.Int}},
	})

	if !errors.Is(err, compiler.ErrCompilation) {
		t.Errorf("expected ErrCompilation, got %v", err)
	}
	if !errors.Is(err, fields.ErrInvalidDeclaration) {
		t.Errorf("expected wrapped declaration error, got %v", err)
	}
}

func TestJSONSchema(t *testing.T) {
	target, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}

	s := target.JSONSchema()
	if s.Type != "object" || s.AdditionalProperties == nil || *s.AdditionalProperties {
		t.Errorf("root should be a closed object: %+v", s)
	}
	if !slices.Equal(s.Required, []string{"score", "tone", "summary", "entities"}) {
		t.Errorf("required = %v", s.Required)
	}

	score := s.Properties["score"]
	if score.Type != "integer" || *score.Minimum != 1 || *score.Maximum != 5 {
		t.Errorf("score schema = %+v", score)
	}

	tone := s.Properties["tone"]
	if tone.Type != "array" || len(tone.Items.Enum) != 3 || *tone.MaxItems != 1 {
		t.Errorf("tone schema = %+v", tone)
	}

	entities := s.Properties["entities"].Items
	if entities.Properties["weight"].Type != "number" {
		t.Errorf("weight type = %s, want number", entities.Properties["weight"].Type)
	}
	if !slices.Equal(entities.Required, []string{"name", "weight"}) {
		t.Errorf("record required = %v", entities.Required)
	}
}

func TestCheck(t *testing.T) {
	target, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			"conforming",
			`{"score":3,"tone":["pos"],"summary":"ok","entities":[{"name":"a","weight":0.5}]}`,
			false,
		},
		{"missing slot", `{"score":3,"tone":["pos"],"summary":"ok"}`, true},
		{"out of range", `{"score":9,"tone":["pos"],"summary":"ok","entities":[]}`, true},
		{"unknown label", `{"score":3,"tone":["meh"],"summary":"ok","entities":[]}`, true},
		{"too many labels", `{"score":3,"tone":["pos","neg"],"summary":"ok","entities":[]}`, true},
		{"extra property", `{"score":3,"tone":[],"summary":"ok","entities":[],"x":1}`, true},
		{"record key type", `{"score":3,"tone":[],"summary":"ok","entities":[{"name":"a","weight":"high"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc any
			if err := json.Unmarshal([]byte(tt.doc), &doc); err != nil {
				t.Fatal(err)
			}

			err := target.Check(doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckSharedAcrossCompiles(t *testing.T) {
	first, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}
	second, err := compiler.Compile(sentimentDefinition())
	if err != nil {
		t.Fatal(err)
	}

	doc := map[string]any{"score": 9.0, "tone": []any{}, "summary": "ok", "entities": []any{}}
	for i, target := range []*compiler.TargetType{first, second, first} {
		if err := target.Check(doc); err == nil {
			t.Errorf("target %d: Check() accepted out-of-range score", i)
		}
	}

	doc["score"] = 2.0
	if err := second.Check(doc); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}
