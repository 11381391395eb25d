package fields_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/schemata/internal/fields"
)

func ptr(v int) *int { return &v }

func TestValidateDeclaration(t *testing.T) {
	tests := []struct {
		name   string
		field  fields.Field
		want   []fields.Constraint
		fields []string
	}{
		{
			name:  "valid int scale",
			field: fields.Field{Name: "score", Type: fields.Int, ScaleMin: ptr(1), ScaleMax: ptr(5)},
		},
		{
			name:  "valid str",
			field: fields.Field{Name: "summary", Type: fields.Str},
		},
		{
			name:  "valid free list",
			field: fields.Field{Name: "tags", Type: fields.ListStr},
		},
		{
			name: "valid label set",
			field: fields.Field{
				Name: "tone", Type: fields.ListStr,
				IsSetOfLabels: true, Labels: []string{"pos", "neg"}, MaxLabels: ptr(1),
			},
		},
		{
			name: "valid dict list",
			field: fields.Field{
				Name: "entities", Type: fields.ListDict,
				DictKeys: []fields.DictKey{{Name: "name", Type: fields.KeyStr}, {Name: "weight", Type: fields.KeyFloat}},
			},
		},
		{
			name:   "missing name",
			field:  fields.Field{Type: fields.Str},
			want:   []fields.Constraint{fields.ConstraintName},
			fields: []string{"field.name"},
		},
		{
			name:   "unknown type",
			field:  fields.Field{Name: "x", Type: "float"},
			want:   []fields.Constraint{fields.ConstraintType},
			fields: []string{"x.type"},
		},
		{
			name:   "int missing bounds",
			field:  fields.Field{Name: "score", Type: fields.Int},
			want:   []fields.Constraint{fields.ConstraintScaleBounds, fields.ConstraintScaleBounds},
			fields: []string{"score.scale_min", "score.scale_max"},
		},
		{
			name:   "int equal bounds",
			field:  fields.Field{Name: "score", Type: fields.Int, ScaleMin: ptr(3), ScaleMax: ptr(3)},
			want:   []fields.Constraint{fields.ConstraintScaleBounds},
			fields: []string{"score.scale_max"},
		},
		{
			name:   "int inverted bounds",
			field:  fields.Field{Name: "score", Type: fields.Int, ScaleMin: ptr(5), ScaleMax: ptr(1)},
			want:   []fields.Constraint{fields.ConstraintScaleBounds},
			fields: []string{"score.scale_max"},
		},
		{
			name:   "label set with one label",
			field:  fields.Field{Name: "tone", Type: fields.ListStr, IsSetOfLabels: true, Labels: []string{"pos"}},
			want:   []fields.Constraint{fields.ConstraintLabels},
			fields: []string{"tone.labels"},
		},
		{
			name: "label set with empty and duplicate labels",
			field: fields.Field{
				Name: "tone", Type: fields.ListStr, IsSetOfLabels: true,
				Labels: []string{"pos", "", "pos"},
			},
			want:   []fields.Constraint{fields.ConstraintLabels, fields.ConstraintLabels},
			fields: []string{"tone.labels[1]", "tone.labels[2]"},
		},
		{
			name:   "max labels below one",
			field:  fields.Field{Name: "tags", Type: fields.ListStr, MaxLabels: ptr(0)},
			want:   []fields.Constraint{fields.ConstraintMaxLabels},
			fields: []string{"tags.max_labels"},
		},
		{
			name:   "dict list without keys",
			field:  fields.Field{Name: "entities", Type: fields.ListDict},
			want:   []fields.Constraint{fields.ConstraintDictKeys},
			fields: []string{"entities.dict_keys"},
		},
		{
			name: "dict key problems",
			field: fields.Field{
				Name: "entities", Type: fields.ListDict,
				DictKeys: []fields.DictKey{{Name: "a", Type: fields.KeyStr}, {Name: "a", Type: "date"}},
			},
			want:   []fields.Constraint{fields.ConstraintDictKeys, fields.ConstraintDictKeys},
			fields: []string{"entities.dict_keys[1].name", "entities.dict_keys[1].type"},
		},
		{
			name:  "foreign constraints ignored",
			field: fields.Field{Name: "summary", Type: fields.Str, ScaleMin: ptr(9), Labels: []string{"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fields.ValidateDeclaration(tt.field)

			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var decl *fields.DeclarationError
			if !errors.As(err, &decl) {
				t.Fatalf("expected *DeclarationError, got %v", err)
			}
			if !errors.Is(err, fields.ErrInvalidDeclaration) {
				t.Error("error does not match ErrInvalidDeclaration")
			}
			if len(decl.Issues) != len(tt.want) {
				t.Fatalf("got %d issues %v, want %d", len(decl.Issues), decl.Issues, len(tt.want))
			}
			for i, issue := range decl.Issues {
				if issue.Constraint != tt.want[i] {
					t.Errorf("issue[%d].Constraint = %s, want %s", i, issue.Constraint, tt.want[i])
				}
				if issue.Field != tt.fields[i] {
					t.Errorf("issue[%d].Field = %s, want %s", i, issue.Field, tt.fields[i])
				}
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		err := fields.ValidateFields([]fields.Field{
			{Name: "summary", Type: fields.Str},
			{Name: "score", Type: fields.Int, ScaleMin: ptr(0), ScaleMax: ptr(1)},
			{Name: "summary", Type: fields.ListStr},
		})

		var decl *fields.DeclarationError
		if !errors.As(err, &decl) {
			t.Fatalf("expected *DeclarationError, got %v", err)
		}
		if !decl.Has(fields.ConstraintDuplicateName) {
			t.Errorf("expected duplicate_name issue, got %v", decl.Issues)
		}
		if decl.Issues[0].Field != "fields[2].name" {
			t.Errorf("Field = %s, want fields[2].name", decl.Issues[0].Field)
		}
	})

	t.Run("issues are indexed", func(t *testing.T) {
		err := fields.ValidateFields([]fields.Field{
			{Name: "ok", Type: fields.Str},
			{Name: "bad", Type: fields.ListDict},
		})

		var decl *fields.DeclarationError
		if !errors.As(err, &decl) {
			t.Fatalf("expected *DeclarationError, got %v", err)
		}
		if decl.Issues[0].Field != "fields[1].dict_keys" {
			t.Errorf("Field = %s, want fields[1].dict_keys", decl.Issues[0].Field)
		}
		if !strings.Contains(err.Error(), "fields[1].dict_keys") {
			t.Errorf("Error() = %q, want issue path", err.Error())
		}
	})

	t.Run("empty list is valid", func(t *testing.T) {
		if err := fields.ValidateFields(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestNormalize(t *testing.T) {
	labels := []string{"a", "b"}
	f := fields.Field{
		Name: "  tone ", Type: fields.ListStr,
		IsSetOfLabels: true, Labels: labels,
		ScaleMin: ptr(1), DictKeys: []fields.DictKey{{Name: "x", Type: fields.KeyStr}},
	}

	n := f.Normalize()
	if n.Name != "tone" {
		t.Errorf("Name = %q, want tone", n.Name)
	}
	if n.ScaleMin != nil || n.DictKeys != nil {
		t.Error("constraints of other types were not cleared")
	}

	labels[0] = "changed"
	if n.Labels[0] != "a" {
		t.Error("normalized labels alias the input slice")
	}

	free := fields.Field{Name: "tags", Type: fields.ListStr, Labels: []string{"x"}}.Normalize()
	if free.Labels != nil {
		t.Error("labels kept on a free string list")
	}
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name  string
		field fields.Field
		want  bool
	}{
		{"zero to one", fields.Field{Type: fields.Int, ScaleMin: ptr(0), ScaleMax: ptr(1)}, true},
		{"one to five", fields.Field{Type: fields.Int, ScaleMin: ptr(1), ScaleMax: ptr(5)}, false},
		{"str", fields.Field{Type: fields.Str}, false},
		{"unbounded int", fields.Field{Type: fields.Int}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.IsBinary(); got != tt.want {
				t.Errorf("IsBinary() = %v, want %v", got, tt.want)
			}
		})
	}
}
