package schema

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Text is a description authored either as a single string or as a list of lines.
type Text struct {
	Lines []string
	List  bool
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (t *Text) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = Text{Lines: []string{value.Value}}
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := value.Decode(&lines); err != nil {
			return fmt.Errorf("line %d: description list must contain strings: %w", value.Line, err)
		}
		*t = Text{Lines: lines, List: true}
		return nil
	default:
		return fmt.Errorf("line %d: description must be a string or a list of strings", value.Line)
	}
}

// JSONSchema describes Text for the definition meta-schema.
func (Text) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// IsZero reports whether no description was authored.
func (t Text) IsZero() bool {
	return len(t.Lines) == 0
}

// String joins the lines with newlines and trims surrounding whitespace.
func (t Text) String() string {
	return strings.TrimSpace(strings.Join(t.Lines, "\n"))
}

// Value returns the description in its authored shape: a string, a []any of
// lines, or nil.
func (t Text) Value() any {
	if t.IsZero() {
		return nil
	}
	if !t.List {
		return t.Lines[0]
	}
	lines := make([]any, len(t.Lines))
	for i, line := range t.Lines {
		lines[i] = line
	}
	return lines
}

// Field is a single entity field.
//
// Target flags (in_opt_db, required_in_opt, ...) and domain keys such as
// opt_db_regex land in Extra.
type Field struct {
	Name        string         `yaml:"name" json:"name" jsonschema_description:"Field name. A name containing '(' denotes a documentation-only method."`
	Type        string         `yaml:"type,omitempty" json:"type,omitempty" jsonschema_description:"Type registry name, e.g. string, UUID, set(MaterialTag)."`
	Unit        string         `yaml:"unit,omitempty" json:"unit,omitempty"`
	Example     any            `yaml:"example,omitempty" json:"example,omitempty"`
	Description Text           `yaml:"description,omitempty" json:"description,omitempty"`
	PrimaryKey  bool           `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Min         *float64       `yaml:"min,omitempty" json:"min,omitempty"`
	Max         *float64       `yaml:"max,omitempty" json:"max,omitempty"`
	Extra       map[string]any `yaml:",inline" json:"-"`
	Line        int            `yaml:"-" json:"-"`
}

// UnmarshalYAML records the field's line number.
func (f *Field) UnmarshalYAML(value *yaml.Node) error {
	type plain Field
	if err := value.Decode((*plain)(f)); err != nil {
		return err
	}
	f.Line = value.Line
	return nil
}

// IsDerived reports whether the field is a documentation-only method,
// written with parentheses in its name.
func (f *Field) IsDerived() bool {
	return strings.Contains(f.Name, "(")
}

// Bool returns the boolean flag stored under key. Absent or non-boolean
// values yield def.
func (f *Field) Bool(key string, def bool) bool {
	return boolFlag(f.Extra, key, def)
}

// Extension returns a raw extra value, e.g. a target flag or a regex key.
func (f *Field) Extension(key string) (any, bool) {
	v, ok := f.Extra[key]
	return v, ok
}

// Get implements Row using the YAML key names.
func (f *Field) Get(key string) (any, bool) {
	switch key {
	case "name":
		return f.Name, true
	case "type":
		return nonEmpty(f.Type)
	case "unit":
		return nonEmpty(f.Unit)
	case "example":
		return f.Example, f.Example != nil
	case "description":
		return f.Description.Value(), !f.Description.IsZero()
	case "primary_key":
		return f.PrimaryKey, true
	case "min":
		if f.Min == nil {
			return nil, false
		}
		return *f.Min, true
	case "max":
		if f.Max == nil {
			return nil, false
		}
		return *f.Max, true
	}
	return f.Extension(key)
}

// Entity is a named record type.
type Entity struct {
	Name        string         `yaml:"name" json:"name"`
	Description Text           `yaml:"description,omitempty" json:"description,omitempty"`
	Inherits    string         `yaml:"inherits,omitempty" json:"inherits,omitempty" jsonschema_description:"Name of the parent entity within the same document."`
	Fields      []Field        `yaml:"fields,omitempty" json:"fields,omitempty"`
	Extra       map[string]any `yaml:",inline" json:"-"`
	Line        int            `yaml:"-" json:"-"`

	document string
}

// UnmarshalYAML records the entity's line number.
func (e *Entity) UnmarshalYAML(value *yaml.Node) error {
	type plain Entity
	if err := value.Decode((*plain)(e)); err != nil {
		return err
	}
	e.Line = value.Line
	return nil
}

// Document returns the name of the document that declares the entity.
func (e *Entity) Document() string {
	return e.document
}

// Flag reports whether the entity is marked with the given target flag.
func (e *Entity) Flag(key string) bool {
	return boolFlag(e.Extra, key, false)
}

// Field returns the entity's own field with the given name.
func (e *Entity) Field(name string) (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// Get implements Row using the YAML key names.
func (e *Entity) Get(key string) (any, bool) {
	switch key {
	case "name":
		return e.Name, true
	case "description":
		return e.Description.Value(), !e.Description.IsZero()
	case "inherits":
		return nonEmpty(e.Inherits)
	}
	v, ok := e.Extra[key]
	return v, ok
}

// EntityDocument is a parsed entity file such as materials.yaml.
type EntityDocument struct {
	Name    string    `yaml:"-" json:"-"`
	Path    string    `yaml:"-" json:"-"`
	Objects []*Entity `yaml:"objects" json:"objects"`
}

// Entity returns the entity with the given name.
func (d *EntityDocument) Entity(name string) (*Entity, bool) {
	for _, e := range d.Objects {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// EnumItem is one member of an enum document.
//
// Deprecated items stay in the source so their keys are never reused, but
// they are left out of generated enumerations.
type EnumItem struct {
	Key         *int           `yaml:"key,omitempty" json:"key,omitempty" jsonschema_description:"Stable numeric identifier. Never reused."`
	Name        string         `yaml:"name" json:"name"`
	DisplayName string         `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Description Text           `yaml:"description,omitempty" json:"description,omitempty"`
	Deprecated  bool           `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Extra       map[string]any `yaml:",inline" json:"-"`
	Line        int            `yaml:"-" json:"-"`
}

// UnmarshalYAML records the item's line number.
func (i *EnumItem) UnmarshalYAML(value *yaml.Node) error {
	type plain EnumItem
	if err := value.Decode((*plain)(i)); err != nil {
		return err
	}
	i.Line = value.Line
	return nil
}

// Get implements Row using the YAML key names.
func (i *EnumItem) Get(key string) (any, bool) {
	switch key {
	case "key":
		if i.Key == nil {
			return nil, false
		}
		return *i.Key, true
	case "name":
		return i.Name, true
	case "display_name":
		return nonEmpty(i.DisplayName)
	case "description":
		return i.Description.Value(), !i.Description.IsZero()
	case "deprecated":
		return i.Deprecated, true
	}
	v, ok := i.Extra[key]
	return v, ok
}

// Enum is a parsed enum file such as material_tags.yaml.
type Enum struct {
	Name  string
	Path  string
	Items []EnumItem
}

// Active returns the non-deprecated items in source order.
func (e *Enum) Active() []EnumItem {
	items := make([]EnumItem, 0, len(e.Items))
	for _, item := range e.Items {
		if !item.Deprecated {
			items = append(items, item)
		}
	}
	return items
}

// Values returns field of every non-deprecated item, in source order.
// An item lacking the field is a data error.
func (e *Enum) Values(field string) ([]any, error) {
	items := e.Active()
	values := make([]any, 0, len(items))
	for _, item := range items {
		v, ok := item.Get(field)
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: enum %s item %q (line %d) has no %q", ErrMissingValue, e.Name, item.Name, item.Line, field)
		}
		values = append(values, v)
	}
	return values, nil
}

// Row is a definition record addressed by YAML key, as consumed by table
// renderers.
type Row interface {
	Get(key string) (any, bool)
}

func boolFlag(extra map[string]any, key string, def bool) bool {
	v, ok := extra[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func nonEmpty(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}
