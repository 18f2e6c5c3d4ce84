package schema

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound is returned when no entity document has the requested name.
	ErrDocumentNotFound = errors.New("entity document not found")
	// ErrEntityNotFound is returned when an entity lookup by name fails.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrEnumNotFound is returned when no enum document has the requested name.
	ErrEnumNotFound = errors.New("enum not found")
	// ErrMissingValue is returned when an enum item lacks a requested field.
	ErrMissingValue = errors.New("missing value")
)

// ValidationError represents a definition validation error with context
type ValidationError struct {
	File       string // Source file name (e.g., "materials.yaml")
	Field      string // Field path (e.g., "objects[2].fields[0].name")
	Message    string // Error message
	Suggestion string // Helpful suggestion (optional)
	Line       int    // Line number in YAML (if available)
}

// Error returns a formatted error message
func (e *ValidationError) Error() string {
	location := e.Field
	if e.File != "" {
		location = e.File + ": " + e.Field
	}

	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("validation error at %s (line %d): %s", location, e.Line, e.Message)
	} else {
		msg = fmt.Sprintf("validation error at %s: %s", location, e.Message)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error returns all validation errors formatted with clear separation
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("found %d validation errors:\n", len(e)))
	for i, err := range e {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return buf.String()
}
