package schema

import (
	"github.com/invopop/jsonschema"
)

// MetaSchema returns a JSON Schema describing entity documents, for editor
// completion and pre-commit checks of the data directory.
func MetaSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	s := r.Reflect(&EntityDocument{})
	s.Title = "Entity definition document"
	s.Description = "A list of entity definitions under 'objects'. Unknown keys on entities and fields are target flags."
	return s
}

// EnumMetaSchema returns a JSON Schema describing enum documents.
func EnumMetaSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	item := r.Reflect(&EnumItem{})
	return &jsonschema.Schema{
		Version:     item.Version,
		Title:       "Enum definition document",
		Description: "An ordered list of enum items. Deprecated items keep their key reserved.",
		Type:        "array",
		Items:       withoutVersion(item),
	}
}

func withoutVersion(s *jsonschema.Schema) *jsonschema.Schema {
	s.Version = ""
	return s
}
