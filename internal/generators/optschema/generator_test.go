package optschema

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/quill/internal/emit"
	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/synth"
	"github.com/simonhull/firebird-suite/quill/internal/testing/testutil"
	"github.com/simonhull/firebird-suite/quill/internal/track"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

func loadFixture(t *testing.T) *schema.Catalog {
	t.Helper()
	catalog, err := schema.Load(testutil.FixtureDir("data"))
	require.NoError(t, err)
	return catalog
}

func generate(t *testing.T, catalog *schema.Catalog, variant string) *emit.Emitter {
	t.Helper()
	v, err := Preset(variant)
	require.NoError(t, err)

	em, err := New(catalog, Options{Variant: v}).Generate()
	require.NoError(t, err)
	return em
}

func basenames(em *emit.Emitter) []string {
	var names []string
	for _, doc := range em.Documents() {
		names = append(names, doc.Basename)
	}
	return names
}

func document(t *testing.T, em *emit.Emitter, basename string) *fragment.Object {
	t.Helper()
	doc, ok := em.Document(basename)
	require.True(t, ok, "document %s not emitted", basename)
	return doc
}

func TestPreset(t *testing.T) {
	v, err := Preset("opt_db")
	require.NoError(t, err)
	assert.Equal(t, "in_opt_db", v.Target.Filter)
	assert.Equal(t, "required_in_opt_db", v.Target.Required)
	assert.Equal(t, "opt_db_regex", v.PatternKey)
	assert.Equal(t, types.ReferenceUnion, v.References)
	assert.True(t, v.EmbedsEntity("MaterialPhoto"))
	assert.False(t, v.EmbedsEntity("MaterialCertification"))

	assert.True(t, v.Emits("material_package"))

	v, err = Preset("opt")
	require.NoError(t, err)
	assert.Equal(t, types.ReferenceDirect, v.References)
	assert.True(t, v.EmbedsEntity("MaterialCertification"))
	assert.True(t, v.Emits("brand"))
	assert.False(t, v.Emits("material_package"))

	_, err = Preset("nope")
	assert.ErrorIs(t, err, ErrUnknownVariant)

	assert.Equal(t, []string{"opt", "opt_db"}, PresetNames())
}

func TestPresetReturnsCopy(t *testing.T) {
	v, err := Preset("opt_db")
	require.NoError(t, err)
	v.EntityTypes[0] = "Changed"

	again, err := Preset("opt_db")
	require.NoError(t, err)
	assert.Equal(t, []string{"MaterialPhoto"}, again.EntityTypes)
}

func TestVariantValidate(t *testing.T) {
	base, err := Preset("opt_db")
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(v *Variant)
		errMsg string
	}{
		{
			name:   "missing flags",
			modify: func(v *Variant) { v.Target.Filter = "" },
			errMsg: "filter and required flags must be set",
		},
		{
			name:   "bad strategy",
			modify: func(v *Variant) { v.References = "sideways" },
			errMsg: "unknown reference strategy",
		},
		{
			name:   "unknown plan step",
			modify: func(v *Variant) { v.Plan = []string{"material", "palette"} },
			errMsg: "palette is not a schema of the plan",
		},
		{
			name:   "unambiguous entity type",
			modify: func(v *Variant) { v.EntityTypes = []string{"MaterialColor"} },
			errMsg: "MaterialColor is not an entity-or-enum type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base
			v.EntityTypes = append([]string(nil), base.EntityTypes...)
			tt.modify(&v)
			err := v.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGenerateOptDBFileSet(t *testing.T) {
	em := generate(t, loadFixture(t), "opt_db")

	assert.Equal(t, []string{
		"uuid_reference",
		"slug_reference",
		"material",
		"material_type",
		"fff_material_properties",
		"sla_material_properties",
		"material_properties",
		"brand",
		"material_package",
		"fff_material_package",
		"sla_material_package",
		"material_container",
		"fff_material_container",
		"sla_material_container",
		"sla_material_container_connector",
		"material_color",
	}, basenames(em))
}

func TestGenerateOptDBMaterial(t *testing.T) {
	doc := document(t, generate(t, loadFixture(t), "opt_db"), "material")

	assert.Equal(t, "/material", doc.String("$id"))
	assert.Equal(t, emit.Draft2020, doc.String("$schema"))
	assert.Equal(t, "Material", doc.String("title"))

	unevaluated, _ := doc.Get("unevaluatedProperties")
	assert.Equal(t, false, unevaluated)

	props := doc.Object("properties")
	assert.Equal(t, []string{
		"uuid", "brand", "name", "class", "type", "tags", "certifications", "photos",
		"primary_color", "secondary_colors", "density", "properties", "slug",
	}, props.Keys())
	assert.Equal(t, []any{"uuid", "brand", "name", "class", "type"}, doc.List("required"))

	t.Run("uuid has no example", func(t *testing.T) {
		assert.True(t, fragment.Equal(types.UUID(), props.Object("uuid")))
	})

	t.Run("brand accepts links", func(t *testing.T) {
		brand := props.Object("brand")
		assert.Equal(t, []string{"oneOf", "x-example"}, brand.Keys())
		assert.Len(t, brand.List("oneOf"), 3)
		ex, _ := brand.Get("x-example")
		assert.Equal(t, "prusament", ex)
	})

	t.Run("enums", func(t *testing.T) {
		assert.Equal(t, []any{"PLA", "PETG", "ABS", "TPU"}, props.Object("type").List("enum"))
		assert.Equal(t, []any{"glitter", "silk", "carbon_fiber", "abrasive"},
			props.Object("tags").Object("items").List("enum"))
		assert.Equal(t, []any{"ul2818", "rohs"},
			props.Object("certifications").Object("items").List("enum"))
		assert.True(t, fragment.Equal(MaterialClass(), props.Object("class").Filter(func(k string) bool {
			return k != "x-example"
		})))
	})

	t.Run("embedded entities", func(t *testing.T) {
		photo := props.Object("photos").Object("items")
		assert.Equal(t, "MaterialPhoto", photo.String("title"))
		assert.Equal(t, "^https://", photo.Object("properties").Object("url").String("pattern"))

		color := props.Object("primary_color")
		assert.Equal(t, "MaterialColor", color.String("title"))
		assert.Equal(t, []any{"color"}, color.List("required"))
		assert.Equal(t, "MaterialColor", props.Object("secondary_colors").Object("items").String("title"))
	})

	t.Run("direct ref carries no example", func(t *testing.T) {
		assert.True(t, fragment.Equal(types.Ref("material_properties"), props.Object("properties")))
	})

	t.Run("number", func(t *testing.T) {
		want := fragment.Obj("type", "number", "minimum", 0.0, "x-unit", "g/cm3", "x-example", 1.24)
		assert.True(t, fragment.Equal(want, props.Object("density")), cmp.Diff(want.Keys(), props.Object("density").Keys()))
	})

	t.Run("slug", func(t *testing.T) {
		assert.True(t, fragment.Equal(slugProperty(), props.Object("slug")))
		assert.NotContains(t, doc.List("required"), "slug")
	})
}

func TestGenerateOptDBPackage(t *testing.T) {
	em := generate(t, loadFixture(t), "opt_db")
	doc := document(t, em, "material_package")

	props := doc.Object("properties")
	assert.Equal(t, []string{"uuid", "material", "container", "gtin", "signature", "slug", "class"}, props.Keys())
	assert.True(t, fragment.Equal(MaterialClass(), props.Object("class")))
	assert.Equal(t, "^[0-9a-f]{64}$", props.Object("signature").String("pattern"))
	assert.Equal(t, []any{"uuid", "material", "container"}, doc.List("required"))

	oneOf := doc.List("oneOf")
	require.Len(t, oneOf, 2)
	fff := oneOf[0].(*fragment.Object)
	assert.Equal(t, "fff_material_package.schema.json", fff.String("$ref"))
	assert.Equal(t, "FFF", fff.Object("properties").Object("class").String("const"))

	sub := document(t, em, "fff_material_package")
	assert.False(t, sub.Has("unevaluatedProperties"))
	assert.Equal(t, []string{"filament_diameter", "nominal_netto_full_weight"}, sub.Object("properties").Keys())
	assert.Equal(t, []any{"filament_diameter"}, sub.List("required"))
}

func TestGenerateOptDBPropertiesOverride(t *testing.T) {
	doc := document(t, generate(t, loadFixture(t), "opt_db"), "material_properties")

	assert.Equal(t, []string{"$id", "$schema", "type", "title", "properties", "required", "unevaluatedProperties", "anyOf"}, doc.Keys())
	assert.True(t, fragment.Equal(propertiesOverride().List("anyOf"), doc.List("anyOf")))
}

func TestGenerateOptDBReferenceShapes(t *testing.T) {
	em := generate(t, loadFixture(t), "opt_db")

	uuidRef := document(t, em, "uuid_reference")
	assert.Equal(t, []any{"uuid"}, uuidRef.List("required"))
	assert.Equal(t, "uuid", uuidRef.Object("properties").Object("uuid").String("format"))

	slugRef := document(t, em, "slug_reference")
	assert.Equal(t, []any{"slug"}, slugRef.List("required"))
}

func TestGenerateOpt(t *testing.T) {
	em := generate(t, loadFixture(t), "opt")

	assert.Equal(t, []string{"material", "brand", "material_color"}, basenames(em))

	doc := document(t, em, "material")
	props := doc.Object("properties")
	assert.NotContains(t, props.Keys(), "photos")
	assert.NotContains(t, props.Keys(), "properties")
	assert.Equal(t, []any{"uuid", "brand", "type"}, doc.List("required"))

	assert.True(t, fragment.Equal(types.Ref("brand"), props.Object("brand")))

	cert := props.Object("certifications").Object("items")
	assert.Equal(t, "MaterialCertification", cert.String("title"))

	brand := document(t, em, "brand")
	assert.NotContains(t, brand.Object("properties").Keys(), "link_patterns")
	assert.False(t, brand.Object("properties").Object("website").Has("pattern"))
}

func TestGenerateIsDeterministic(t *testing.T) {
	catalog := loadFixture(t)

	first, err := New(catalog, Options{Variant: mustPreset(t, "opt_db")}).Generate()
	require.NoError(t, err)
	second, err := New(catalog, Options{Variant: mustPreset(t, "opt_db")}).Generate()
	require.NoError(t, err)

	a, b := first.Documents(), second.Documents()
	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, fragment.Equal(a[i].Schema, b[i].Schema), a[i].Basename)
	}
}

func TestGenerateLogsFiles(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.LevelDebug, &buf)

	_, err := New(loadFixture(t), Options{Variant: mustPreset(t, "opt"), Logger: log}).Generate()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Generating material.schema.json")
	assert.NotContains(t, out, "Generating material_package.schema.json")
	assert.Contains(t, out, "variant=opt")
}

func TestGenerateReportsUnusedEntity(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.CopyFixture("data", "data")
	p.WriteFile("data/extras.yaml", `objects:
  - name: Forgotten
    in_opt_db: true
    fields:
      - name: id
        type: UUID
`)

	catalog, err := schema.Load(p.Path("data"))
	require.NoError(t, err)

	_, err = New(catalog, Options{Variant: mustPreset(t, "opt_db")}).Generate()
	require.ErrorIs(t, err, track.ErrUnconsumed)
	assert.Contains(t, err.Error(), "extras/Forgotten")
}

func TestGenerateUnmarkedPlanEntity(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.CopyFixture("data", "data")

	packaging, err := p.ReadFile("data/packaging.yaml")
	require.NoError(t, err)
	unmarked := strings.Replace(packaging,
		"  - name: SLAMaterialContainerConnector\n    in_opt_db: true\n",
		"  - name: SLAMaterialContainerConnector\n    in_opt_db: false\n", 1)
	require.NotEqual(t, packaging, unmarked)
	p.WriteFile("data/packaging.yaml", unmarked)

	catalog, err := schema.Load(p.Path("data"))
	require.NoError(t, err)

	_, err = New(catalog, Options{Variant: mustPreset(t, "opt_db")}).Generate()
	require.ErrorIs(t, err, synth.ErrNotMarked)
	assert.Contains(t, err.Error(), "generating sla_material_container_connector.schema.json")
}

func TestGenerateCustomPlan(t *testing.T) {
	v := mustPreset(t, "opt_db")
	v.Plan = []string{"brand", "material_color"}

	em, err := New(loadFixture(t), Options{Variant: v}).Generate()
	require.Error(t, err)
	assert.ErrorIs(t, err, track.ErrUnconsumed)
	assert.Nil(t, em)
}

func TestGenerateMissingEnum(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.CopyFixture("data", "data")
	require.NoError(t, os.Remove(p.Path("data", "material_tags.yaml")))

	catalog, err := schema.Load(p.Path("data"))
	require.NoError(t, err)

	_, err = New(catalog, Options{Variant: mustPreset(t, "opt_db")}).Generate()
	require.ErrorIs(t, err, schema.ErrEnumNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), "generating material.schema.json"), err.Error())
}

func TestClaimTwiceFails(t *testing.T) {
	r := &run{
		emitter: emit.New(emit.Options{}, nil),
		tracker: track.New(),
	}
	require.NoError(t, r.emit("material", fragment.New(), nil))

	err := r.emit("material", fragment.New(), nil)
	assert.ErrorIs(t, err, track.ErrDoubleGeneration)
	assert.Len(t, r.emitter.Documents(), 1)
}

func mustPreset(t *testing.T, name string) Variant {
	t.Helper()
	v, err := Preset(name)
	require.NoError(t, err)
	return v
}
