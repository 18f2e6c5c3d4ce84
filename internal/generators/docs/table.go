package docs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// ErrUnknownRequiredValue is returned for a required flag that is neither
// a boolean nor "recommended".
var ErrUnknownRequiredValue = errors.New("unknown required value")

// Transform renders one cell value.
type Transform func(value any) (string, error)

// RowTransform renders one cell with access to the whole row.
type RowTransform func(value any, row schema.Row) (string, error)

// Column describes one Markdown table column.
type Column struct {
	Field     string // row key
	Title     string
	Transform Transform    // nil means DefaultTransform
	WithRow   RowTransform // takes precedence over Transform
}

func (c Column) cell(row schema.Row) (string, error) {
	value, ok := row.Get(c.Field)
	if !ok {
		value = nil
	}
	switch {
	case c.WithRow != nil:
		return c.WithRow(value, row)
	case c.Transform != nil:
		return c.Transform(value)
	default:
		return DefaultTransform(value), nil
	}
}

// DefaultTransform renders nil as "", booleans as yes/no and lists as
// <br>-separated lines.
func DefaultTransform(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, "<br>")
	case []string:
		return strings.Join(v, "<br>")
	default:
		return fmt.Sprint(v)
	}
}

// RequiredTransform marks required fields with ❗ and recommended ones with ❕.
func RequiredTransform(value any) (string, error) {
	switch value {
	case true:
		return "❗", nil
	case false, nil:
		return "", nil
	case schema.RecommendedValue:
		return "❕", nil
	}
	return "", fmt.Errorf("%w '%v'", ErrUnknownRequiredValue, value)
}

// CodeTransform renders the value as inline code. Absent values stay empty.
func CodeTransform(value any) (string, error) {
	if value == nil {
		return "", nil
	}
	return generator.Code(value), nil
}

// GenerateTable renders rows as a Markdown table. Rows rejected by filter
// are skipped; a nil filter keeps every row.
func GenerateTable(rows []schema.Row, columns []Column, filter func(schema.Row) bool) (string, error) {
	var b strings.Builder

	b.WriteString("|")
	for _, col := range columns {
		b.WriteString(col.Title + "|")
	}
	b.WriteString("\n|")
	for range columns {
		b.WriteString(":--|")
	}
	b.WriteString("\n")

	for _, row := range rows {
		if filter != nil && !filter(row) {
			continue
		}
		b.WriteString("|")
		for _, col := range columns {
			cell, err := col.cell(row)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", col.Field, err)
			}
			b.WriteString(cell + "|")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	return b.String(), nil
}

// Column sets used by the documentation templates.
var (
	ClassColumns = []Column{
		{Field: "name", Title: "Name", Transform: CodeTransform},
		{Field: "type", Title: "Type", Transform: CodeTransform},
		{Field: "unit", Title: "Unit"},
		{Field: "example", Title: "Example"},
		{Field: "description", Title: "Description"},
	}

	EnumColumns = []Column{
		{Field: "key", Title: "ID"},
		{Field: "name", Title: "Name", Transform: CodeTransform},
		{Field: "description", Title: "Description"},
	}

	MaterialTypeColumns = []Column{
		{Field: "key", Title: "ID"},
		{Field: "abbreviation", Title: "Abbr.", Transform: CodeTransform},
		{Field: "name", Title: "Name"},
		{Field: "description", Title: "Description"},
	}

	MaterialTagCategoryColumns = []Column{
		{Field: "name", Title: "Name", Transform: CodeTransform},
		{Field: "emoji", Title: "Emoji"},
		{Field: "display_name", Title: "Display name"},
	}

	MaterialCertificationColumns = []Column{
		{Field: "key", Title: "ID"},
		{Field: "name", Title: "ID (str)", Transform: CodeTransform},
		{Field: "display_name", Title: "Name"},
		{Field: "description", Title: "Description"},
	}
)

func fieldRows(e *schema.Entity) []schema.Row {
	rows := make([]schema.Row, len(e.Fields))
	for i := range e.Fields {
		rows[i] = &e.Fields[i]
	}
	return rows
}

func itemRows(enum *schema.Enum) []schema.Row {
	rows := make([]schema.Row, len(enum.Items))
	for i := range enum.Items {
		rows[i] = &enum.Items[i]
	}
	return rows
}
