package fields

import "fmt"

// ValidateDeclaration checks a single field against the invariants of its
// type. Issue paths are relative to the field name.
func ValidateDeclaration(f Field) error {
	path := f.Name
	if path == "" {
		path = "field"
	}
	return Join(check(f, path))
}

// ValidateFields checks every field of a scheme plus name uniqueness across
// the list. Issue paths take the form "fields[i].constraint".
func ValidateFields(fs []Field) error {
	var issues []Issue
	seen := make(map[string]int, len(fs))

	for i, f := range fs {
		path := fmt.Sprintf("fields[%d]", i)
		issues = append(issues, check(f, path)...)

		if f.Name == "" {
			continue
		}
		if first, ok := seen[f.Name]; ok {
			issues = append(issues, Issue{
				Field:      path + ".name",
				Constraint: ConstraintDuplicateName,
				Message:    fmt.Sprintf("field name %q already declared at fields[%d]", f.Name, first),
			})
			continue
		}
		seen[f.Name] = i
	}

	return Join(issues)
}

func check(f Field, path string) []Issue {
	var issues []Issue

	if f.Name == "" {
		issues = append(issues, Issue{
			Field:      path + ".name",
			Constraint: ConstraintName,
			Message:    "name is required",
		})
	}

	switch f.Type {
	case Int:
		issues = append(issues, checkScale(f, path)...)
	case Str:
	case ListStr:
		issues = append(issues, checkLabels(f, path)...)
	case ListDict:
		issues = append(issues, checkDictKeys(f, path)...)
	default:
		issues = append(issues, Issue{
			Field:      path + ".type",
			Constraint: ConstraintType,
			Message:    fmt.Sprintf("unknown field type %q", f.Type),
		})
	}

	return issues
}

func checkScale(f Field, path string) []Issue {
	var issues []Issue

	if f.ScaleMin == nil {
		issues = append(issues, Issue{
			Field:      path + ".scale_min",
			Constraint: ConstraintScaleBounds,
			Message:    "scale_min is required for int fields",
		})
	}
	if f.ScaleMax == nil {
		issues = append(issues, Issue{
			Field:      path + ".scale_max",
			Constraint: ConstraintScaleBounds,
			Message:    "scale_max is required for int fields",
		})
	}
	if f.ScaleMin != nil && f.ScaleMax != nil && *f.ScaleMin >= *f.ScaleMax {
		issues = append(issues, Issue{
			Field:      path + ".scale_max",
			Constraint: ConstraintScaleBounds,
			Message:    fmt.Sprintf("scale_min (%d) must be less than scale_max (%d)", *f.ScaleMin, *f.ScaleMax),
		})
	}

	return issues
}

func checkLabels(f Field, path string) []Issue {
	var issues []Issue

	if f.MaxLabels != nil && *f.MaxLabels < 1 {
		issues = append(issues, Issue{
			Field:      path + ".max_labels",
			Constraint: ConstraintMaxLabels,
			Message:    fmt.Sprintf("max_labels must be at least 1, got %d", *f.MaxLabels),
		})
	}

	if !f.IsSetOfLabels {
		return issues
	}

	if len(f.Labels) < 2 {
		issues = append(issues, Issue{
			Field:      path + ".labels",
			Constraint: ConstraintLabels,
			Message:    fmt.Sprintf("a label set requires at least 2 labels, got %d", len(f.Labels)),
		})
	}

	seen := make(map[string]bool, len(f.Labels))
	for i, label := range f.Labels {
		switch {
		case label == "":
			issues = append(issues, Issue{
				Field:      fmt.Sprintf("%s.labels[%d]", path, i),
				Constraint: ConstraintLabels,
				Message:    "label must not be empty",
			})
		case seen[label]:
			issues = append(issues, Issue{
				Field:      fmt.Sprintf("%s.labels[%d]", path, i),
				Constraint: ConstraintLabels,
				Message:    fmt.Sprintf("duplicate label %q", label),
			})
		}
		seen[label] = true
	}

	return issues
}

func checkDictKeys(f Field, path string) []Issue {
	if len(f.DictKeys) == 0 {
		return []Issue{{
			Field:      path + ".dict_keys",
			Constraint: ConstraintDictKeys,
			Message:    "at least one dict key is required",
		}}
	}

	var issues []Issue
	seen := make(map[string]bool, len(f.DictKeys))

	for i, key := range f.DictKeys {
		keyPath := fmt.Sprintf("%s.dict_keys[%d]", path, i)

		switch {
		case key.Name == "":
			issues = append(issues, Issue{
				Field:      keyPath + ".name",
				Constraint: ConstraintDictKeys,
				Message:    "key name is required",
			})
		case seen[key.Name]:
			issues = append(issues, Issue{
				Field:      keyPath + ".name",
				Constraint: ConstraintDictKeys,
				Message:    fmt.Sprintf("duplicate key %q", key.Name),
			})
		}
		seen[key.Name] = true

		if !key.Type.Valid() {
			issues = append(issues, Issue{
				Field:      keyPath + ".type",
				Constraint: ConstraintDictKeys,
				Message:    fmt.Sprintf("unknown key type %q", key.Type),
			})
		}
	}

	return issues
}
