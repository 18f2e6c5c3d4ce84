package optschema

import (
	"sort"

	"github.com/simonhull/firebird-suite/quill/internal/emit"
	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/synth"
	"github.com/simonhull/firebird-suite/quill/internal/track"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

// Material classes, also the discriminator values of the class overrides.
const (
	ClassFFF = "FFF"
	ClassSLA = "SLA"
)

// SlugDescription annotates the slug property of top-level entities.
const SlugDescription = "Identifier within the material database directory structure. Has to correspond with entity yaml the filename."

// ambiguous maps the entity-or-enum types to the enum used when the
// variant does not embed them.
var ambiguous = map[string]string{
	"MaterialPhoto":         "material_photos",
	"MaterialCertification": "material_certifications",
}

func ambiguousNames() []string {
	names := make([]string, 0, len(ambiguous))
	for name := range ambiguous {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// referenced entity types and the basename of their schema file
var references = []struct {
	typeName string
	basename string
}{
	{"Brand", "brand"},
	{"Material", "material"},
	{"MaterialContainer", "material_container"},
	{"SLAMaterialContainerConnector", "sla_material_container_connector"},
}

// enum types and the document/field they enumerate
var enums = []struct {
	typeName string
	document string
	field    string
}{
	{"MaterialType", "material_types", "abbreviation"},
	{"MaterialTag", "material_tags", "name"},
	{"MaterialPhotoType", "material_photo_types", "name"},
	{"BrandLinkPatternType", "brand_link_pattern_types", "name"},
}

// entity types embedded inline, with the document that declares them
var embedded = []struct {
	typeName string
	document string
}{
	{"MaterialColor", "materials"},
	{"MaterialPhoto", "materials"},
	{"MaterialCertification", "materials"},
	{"BrandLinkPattern", "brands"},
}

// MaterialClass is the closed FFF/SLA enumeration.
func MaterialClass() *fragment.Object {
	return fragment.Obj("type", "string", "enum", fragment.Arr(ClassFFF, ClassSLA))
}

// Country is an ISO 3166-1 alpha-2 code.
func Country() *fragment.Object {
	return fragment.Obj("type", "string", "minLength", 2, "maxLength", 2)
}

// registerDomain adds the material database types to r.reg. Enum and
// embedded-entity types are resolved lazily so a missing document only
// fails a run that actually uses the type.
func (r *run) registerDomain() {
	reg := r.reg

	reg.Register("Country", types.Fixed(Country()))
	reg.Register("MaterialClass", types.Fixed(MaterialClass()))
	reg.Register("MaterialProperties", types.Fixed(types.Ref("material_properties")))
	reg.Register("Signature", types.FuncEntry(reg.StringSchema))

	for _, ref := range references {
		reg.Register(ref.typeName, types.Fixed(types.Reference(r.variant.References, ref.basename)))
	}

	for _, e := range enums {
		reg.Register(e.typeName, r.enumEntry(e.document, e.field))
	}

	for _, e := range embedded {
		enum, isAmbiguous := ambiguous[e.typeName]
		if isAmbiguous && !r.variant.EmbedsEntity(e.typeName) {
			reg.Register(e.typeName, r.enumEntry(enum, "name"))
			continue
		}
		reg.Register(e.typeName, r.entityEntry(e.document, e.typeName))
	}
}

func (r *run) enumEntry(document, field string) types.Entry {
	return types.FuncEntry(func(*schema.Field) (*fragment.Object, error) {
		enum, err := r.catalog.Enum(document)
		if err != nil {
			return nil, err
		}
		r.tracker.Touch(track.Enum, enum.Name)
		return types.Enum(enum, field)
	})
}

func (r *run) entityEntry(document, name string) types.Entry {
	return types.FuncEntry(func(*schema.Field) (*fragment.Object, error) {
		entity, err := r.catalog.Entity(document, name)
		if err != nil {
			return nil, err
		}
		return r.synthesize(entity, synth.Options{})
	})
}

// slugProperty is appended to the properties of top-level entities.
func slugProperty() *fragment.Object {
	return fragment.Obj("type", "string", "description", SlugDescription)
}

// uuidReference and slugReference are the link shapes a union reference
// accepts besides the full entity.
func uuidReference() *fragment.Object {
	return fragment.Obj(
		"type", "object",
		"properties", fragment.Obj(
			"uuid", fragment.Obj("type", "string", "format", "uuid", "description", "Reference to the entity"),
		),
		"required", fragment.Arr("uuid"),
		"unevaluatedProperties", false,
	)
}

func slugReference() *fragment.Object {
	return fragment.Obj(
		"type", "object",
		"properties", fragment.Obj(
			"slug", fragment.Obj("type", "string", "description", "Location of the entity within the openprinttag-database directory structure"),
		),
		"required", fragment.Arr("slug"),
		"unevaluatedProperties", false,
	)
}

// classOverride discriminates basename on its class property, sending
// each class to its own fff_/sla_ schema.
func classOverride(basename string) *fragment.Object {
	branch := func(class, prefix string) *fragment.Object {
		return fragment.Obj(
			"properties", fragment.Obj("class", fragment.Obj("const", class)),
			"$ref", emit.FileName(prefix+"_"+basename),
		)
	}
	return fragment.Obj(
		"properties", fragment.Obj("class", MaterialClass()),
		"oneOf", fragment.Arr(branch(ClassFFF, "fff"), branch(ClassSLA, "sla")),
	)
}

// propertiesOverride accepts either class's properties.
func propertiesOverride() *fragment.Object {
	return fragment.Obj("anyOf", fragment.Arr(
		types.Ref("fff_material_properties"),
		types.Ref("sla_material_properties"),
	))
}
