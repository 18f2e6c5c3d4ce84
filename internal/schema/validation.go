package schema

import (
	"fmt"
	"sort"
	"strings"
)

// RecommendedValue is the only non-boolean value a required_* flag accepts.
const RecommendedValue = "recommended"

// ValidateEntityDocument checks the structural invariants of an entity document:
// named entities, unique names, unique field names, well-typed target flags and
// resolvable, acyclic parents.
func ValidateEntityDocument(doc *EntityDocument) error {
	var errors ValidationErrors
	file := doc.Name + ".yaml"

	entityNames := make(map[string]int)
	for i, entity := range doc.Objects {
		path := fmt.Sprintf("objects[%d]", i)

		if entity == nil {
			errors = append(errors, ValidationError{
				File:    file,
				Field:   path,
				Message: "entity definition is empty",
			})
			continue
		}

		if entity.Name == "" {
			errors = append(errors, ValidationError{
				File:    file,
				Field:   path + ".name",
				Message: "entity name is required",
				Line:    entity.Line,
			})
		} else if first, exists := entityNames[entity.Name]; exists {
			errors = append(errors, ValidationError{
				File:       file,
				Field:      path + ".name",
				Message:    fmt.Sprintf("duplicate entity name '%s' (first defined at objects[%d])", entity.Name, first),
				Suggestion: "each entity must have a unique name within its document",
				Line:       entity.Line,
			})
		} else {
			entityNames[entity.Name] = i
		}
		errors = append(errors, flagErrors(file, path, entity.Extra, entity.Line)...)

		fieldNames := make(map[string]int)
		for j, field := range entity.Fields {
			fieldPath := fmt.Sprintf("%s.fields[%d]", path, j)

			if field.Name == "" {
				errors = append(errors, ValidationError{
					File:    file,
					Field:   fieldPath + ".name",
					Message: "field name is required",
					Line:    field.Line,
				})
				continue
			}

			if first, exists := fieldNames[field.Name]; exists {
				errors = append(errors, ValidationError{
					File:       file,
					Field:      fieldPath + ".name",
					Message:    fmt.Sprintf("duplicate field name '%s' in %s (first defined at fields[%d])", field.Name, entity.Name, first),
					Suggestion: "rename or remove one of the fields",
					Line:       field.Line,
				})
			} else {
				fieldNames[field.Name] = j
			}
			errors = append(errors, flagErrors(file, fieldPath, field.Extra, field.Line)...)

			if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
				errors = append(errors, ValidationError{
					File:    file,
					Field:   fieldPath,
					Message: fmt.Sprintf("min %v is greater than max %v", *field.Min, *field.Max),
					Line:    field.Line,
				})
			}
		}
	}

	// Parents must live in the same document and must not form a cycle.
	for i, entity := range doc.Objects {
		if entity == nil || entity.Inherits == "" {
			continue
		}
		path := fmt.Sprintf("objects[%d].inherits", i)

		if _, ok := doc.Entity(entity.Inherits); !ok {
			errors = append(errors, ValidationError{
				File:       file,
				Field:      path,
				Message:    fmt.Sprintf("%s inherits unknown entity '%s'", entity.Name, entity.Inherits),
				Suggestion: fmt.Sprintf("define '%s' in %s", entity.Inherits, file),
				Line:       entity.Line,
			})
			continue
		}

		if chain, ok := inheritanceCycle(doc, entity); ok {
			errors = append(errors, ValidationError{
				File:    file,
				Field:   path,
				Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(chain, " -> ")),
				Line:    entity.Line,
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// flagErrors checks target flags: in_* must be a boolean, required_* a
// boolean or "recommended". Unquoted yes/no/on/off are strings in YAML 1.2
// and are rejected rather than read as a default.
func flagErrors(file, path string, extra map[string]any, line int) ValidationErrors {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errors ValidationErrors
	for _, key := range keys {
		value := extra[key]
		if _, ok := value.(bool); ok {
			continue
		}
		switch {
		case strings.HasPrefix(key, "in_"):
			errors = append(errors, ValidationError{
				File:       file,
				Field:      path + "." + key,
				Message:    fmt.Sprintf("flag %s must be a boolean, got %v", key, describeValue(value)),
				Suggestion: "use true or false",
				Line:       line,
			})
		case strings.HasPrefix(key, "required_") && value != RecommendedValue:
			errors = append(errors, ValidationError{
				File:       file,
				Field:      path + "." + key,
				Message:    fmt.Sprintf("flag %s must be a boolean or %q, got %v", key, RecommendedValue, describeValue(value)),
				Suggestion: "use a boolean or recommended",
				Line:       line,
			})
		}
	}
	return errors
}

func describeValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// inheritanceCycle follows the parent chain from start and returns it when it
// loops back onto itself.
func inheritanceCycle(doc *EntityDocument, start *Entity) ([]string, bool) {
	seen := map[string]bool{start.Name: true}
	chain := []string{start.Name}

	current := start
	for current.Inherits != "" {
		parent, ok := doc.Entity(current.Inherits)
		if !ok {
			return nil, false
		}
		chain = append(chain, parent.Name)
		if seen[parent.Name] {
			return chain, true
		}
		seen[parent.Name] = true
		current = parent
	}
	return nil, false
}

// ValidateEnum checks that every item is named and that names and keys are unique.
func ValidateEnum(enum *Enum) error {
	var errors ValidationErrors
	file := enum.Name + ".yaml"

	names := make(map[string]int)
	keys := make(map[int]int)
	for i, item := range enum.Items {
		path := fmt.Sprintf("[%d]", i)

		if item.Name == "" {
			errors = append(errors, ValidationError{
				File:    file,
				Field:   path + ".name",
				Message: "item name is required",
				Line:    item.Line,
			})
		} else if first, exists := names[item.Name]; exists {
			errors = append(errors, ValidationError{
				File:    file,
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate item name '%s' (first defined at [%d])", item.Name, first),
				Line:    item.Line,
			})
		} else {
			names[item.Name] = i
		}

		if item.Key == nil {
			continue
		}
		if first, exists := keys[*item.Key]; exists {
			errors = append(errors, ValidationError{
				File:       file,
				Field:      path + ".key",
				Message:    fmt.Sprintf("duplicate key %d (first used at [%d])", *item.Key, first),
				Suggestion: "keys are stable identifiers; pick an unused one and never reuse deprecated keys",
				Line:       item.Line,
			})
		} else {
			keys[*item.Key] = i
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
