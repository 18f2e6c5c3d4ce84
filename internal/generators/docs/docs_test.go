package docs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/testing/testutil"
	"github.com/simonhull/firebird-suite/quill/internal/track"
)

const testRepo = "https://github.com/example/db"

func fixtureCatalog(t *testing.T) *schema.Catalog {
	t.Helper()
	catalog, err := schema.Load(testutil.FixtureDir("data"))
	require.NoError(t, err)
	return catalog
}

func fixtureRun(t *testing.T) *run {
	t.Helper()
	return newRun(New(fixtureCatalog(t), Options{
		SourceDir: testutil.FixtureDir("docs"),
		OutDir:    t.TempDir(),
		Repo:      testRepo,
	}))
}

func widgetRun(t *testing.T) *run {
	t.Helper()
	doc, err := schema.ParseEntityDocument("widgets", []byte(`
objects:
  - name: Widget
    in_opt: true
    fields:
      - name: id
        type: int
        primary_key: true
        in_opt: true
      - name: size()
        type: int
  - name: BigWidget
    inherits: Widget
`))
	require.NoError(t, err)

	catalog := schema.NewCatalog("")
	require.NoError(t, catalog.AddDocument(doc))
	return newRun(New(catalog, Options{Repo: testRepo}))
}

func TestClassDocumentation(t *testing.T) {
	r := fixtureRun(t)

	got, err := r.classDocumentation("brands.yaml", "BrandLinkPattern")
	require.NoError(t, err)
	assert.Equal(t, "# BrandLinkPattern\n"+
		"> Used in: DB\n\n"+
		"|Name|Type|Unit|Example|Description|\n"+
		"|:--|:--|:--|:--|:--|\n"+
		"|`type`|`BrandLinkPatternType`||||\n"+
		"|`pattern`|`string`||https://prusament.com/materials/{slug}||\n"+
		"\n"+
		"*The documentation was automatically generated from [`brands.yaml`](https://github.com/example/db/blob/main/data/brands.yaml)*\n\n", got)

	got, err = r.classDocumentation("brands", "Brand")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "# Brand\n> Used in: DB, OPT\n\nA manufacturer or reseller of materials.\n\n|Name|"), got)
	assert.Contains(t, got, "|`countries_of_origin`|`list(Country)`||CZ||\n")
	assert.Contains(t, got, "|URL patterns recognized as belonging to the brand.<br>Used to match scraped product pages.|\n")
}

func TestClassDocumentationTwice(t *testing.T) {
	r := fixtureRun(t)

	_, err := r.classDocumentation("brands", "Brand")
	require.NoError(t, err)
	_, err = r.classDocumentation("brands.yaml", "Brand")
	assert.ErrorIs(t, err, track.ErrDoubleGeneration)
}

func TestClassDocumentationUnknownEntity(t *testing.T) {
	r := fixtureRun(t)

	_, err := r.classDocumentation("brands", "Distributor")
	assert.ErrorIs(t, err, schema.ErrEntityNotFound)
}

func TestPlantumlEntity(t *testing.T) {
	r := widgetRun(t)
	r.diagram = "widgets"

	got, err := r.plantumlEntity("Widget")
	require.NoError(t, err)
	assert.Equal(t, "entity Widget <<OPT>>\n{\n*{field} id: int $in_opt\nsize(): int\n}\n", got)

	got, err = r.plantumlEntity("BigWidget")
	require.NoError(t, err)
	assert.Equal(t, "entity BigWidget \n{\n}\nBigWidget -u-|> Widget", got)
}

func TestPlantumlEntityCustomInheritance(t *testing.T) {
	r := widgetRun(t)
	r.diagram = "widgets"

	got, err := r.plantumlEntity("BigWidget", true)
	require.NoError(t, err)
	assert.Equal(t, "entity BigWidget \n{\n}\n", got)
}

func TestPlantumlEntityOutsideDiagram(t *testing.T) {
	r := widgetRun(t)

	_, err := r.plantumlEntity("Widget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available in PlantUML templates")
}

func TestPlantumlEntityRef(t *testing.T) {
	r := widgetRun(t)

	got, err := r.plantumlEntityRef("widgets.yaml", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "entity Widget <<OPT>>\n", got)

	// References do not count as the entity's diagram block.
	assert.False(t, r.tracker.Consumed(kindDiagram, "widgets/Widget"))
}

func TestProjectsCommon(t *testing.T) {
	r := widgetRun(t)

	assert.Equal(t, "legend\n"+
		"<<DB>> $in_opt_db In the database\n"+
		"<<OPT>> $in_opt In OpenPrintTag\n"+
		"end legend\n", r.projectsCommon())
}

func TestEnumTable(t *testing.T) {
	r := fixtureRun(t)

	got, err := r.enumTable("material_types.yaml", MaterialTypeColumns)
	require.NoError(t, err)
	assert.Equal(t, "|ID|Abbr.|Name|Description|\n"+
		"|:--|:--|:--|:--|\n"+
		"|0|`PLA`|Polylactic Acid|Easy to print, biodegradable.|\n"+
		"|1|`PETG`|Polyethylene Terephthalate Glycol||\n"+
		"|2|`ABS`|Acrylonitrile Butadiene Styrene|Needs an enclosure.<br>Emits fumes while printing.|\n"+
		"|3|`TPU`|Thermoplastic Polyurethane||\n"+
		"\n"+
		"*The table was automatically generated from [`material_types.yaml`](https://github.com/example/db/blob/main/data/material_types.yaml)*\n\n", got)

	got, err = r.enumTable("material_photo_types")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "|ID|Name|Description|\n"), got)
	assert.Contains(t, got, "|1|`swatch`|Printed color sample.|\n")

	_, err = r.enumTable("material_types")
	assert.ErrorIs(t, err, track.ErrDoubleGeneration)

	_, err = r.enumTable("material_colors")
	assert.ErrorIs(t, err, schema.ErrEnumNotFound)
}

func TestMaterialTagTable(t *testing.T) {
	r := fixtureRun(t)

	got, err := r.materialTagTable()
	require.NoError(t, err)
	assert.Equal(t, "<table>"+
		"<tr><th>ID</th><th>Name</th><th>Display name</th><th>Info</th>"+
		"<tr><th colspan='4' align='left'>✨ Optical</th></tr>"+
		"<tr><td>0</td><td><code>glitter</code></td><td>Glitter</td><td>Contains reflective particles.</td></tr>"+
		"<tr><td>1</td><td><code>silk</code></td><td>Silk</td><td>Hints <code>glitter</code></td></tr>"+
		"<tr><th colspan='4' align='left'>🔩 Mechanical</th></tr>"+
		"<tr><td>2</td><td><code>carbon_fiber</code></td><td>Carbon fiber</td><td>Implies <code>abrasive</code></td></tr>"+
		"<tr><td>3</td><td><code>abrasive</code></td><td>Abrasive</td><td>Wears down brass nozzles.<br>Use a hardened nozzle.</td></tr>"+
		"</table>\n\n"+
		"*The documentation was automatically generated from [`material_tags.yaml`](https://github.com/example/db/blob/main/data/material_tags.yaml)*\n\n", got)
	assert.NotContains(t, got, "glow_in_the_dark_legacy")
}

func TestMaterialTagTableUnknownCategory(t *testing.T) {
	catalog := schema.NewCatalog("")
	require.NoError(t, catalog.AddEnum(parseEnum(t, "material_tags", `
- key: 0
  name: glitter
  category: sparkly
`)))
	require.NoError(t, catalog.AddEnum(parseEnum(t, "material_tag_categories", `
- name: optical
`)))

	_, err := newRun(New(catalog, Options{})).materialTagTable()
	require.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), `"sparkly"`)
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	g := New(fixtureCatalog(t), Options{
		SourceDir: testutil.FixtureDir("docs"),
		OutDir:    out,
		Repo:      testRepo,
	})

	result, err := g.Generate()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(out, "brands.plantuml"),
		filepath.Join(out, "materials.plantuml"),
		filepath.Join(out, "packaging.plantuml"),
	}, result.Diagrams)

	require.NoError(t, generator.Execute(context.Background(), result.Operations, generator.ExecuteOptions{Writer: io.Discard}))

	for _, name := range append(DefaultFiles, "index") {
		ext := ".md"
		if name == "index" {
			ext = ".html"
		}
		assert.FileExists(t, filepath.Join(out, name+ext))
	}

	materials, err := os.ReadFile(filepath.Join(out, "materials.md"))
	require.NoError(t, err)
	assert.Contains(t, string(materials), `<img src="materials.svg">*The graph was automatically generated from [`+"`materials.plantuml`"+`](https://github.com/example/db/blob/main/docs_src/materials.plantuml)*`)
	assert.Contains(t, string(materials), "# FFFMaterialProperties\n")

	diagram, err := os.ReadFile(filepath.Join(out, "packaging.plantuml"))
	require.NoError(t, err)
	assert.Contains(t, string(diagram), "@startuml\nhide empty members\n")
	assert.Contains(t, string(diagram), "legend\n<<DB>> $in_opt_db In the database\n")
	assert.Contains(t, string(diagram), "FFFMaterialPackage -u-|> MaterialPackage\n")
	assert.Contains(t, string(diagram), "entity Material <<DB>><<OPT>>\n")

	readme, err := os.ReadFile(filepath.Join(out, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "[repository](https://github.com/example/db)")
}

func TestGeneratePartialPages(t *testing.T) {
	out := t.TempDir()
	result, err := New(fixtureCatalog(t), Options{
		SourceDir: testutil.FixtureDir("docs"),
		OutDir:    out,
		Files:     []string{"README", "material_types"},
		HTML:      true,
	}).Generate()

	// Two pages cannot cover the whole catalog.
	require.ErrorIs(t, err, track.ErrUnconsumed)
	assert.Nil(t, result)
}

func TestGenerateReportsEveryMissingKind(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.CopyFixture("docs", "docs")
	p.WriteFile("docs/markdown/materials.md", "# Materials\n")

	_, err := New(fixtureCatalog(t), Options{
		SourceDir: p.Path("docs"),
		OutDir:    p.Path("out"),
	}).Generate()
	require.ErrorIs(t, err, track.ErrUnconsumed)

	msg := err.Error()
	assert.Contains(t, msg, "enum table material_photo_types")
	assert.Contains(t, msg, "plantuml entity materials/FFFMaterialProperties")
	assert.Contains(t, msg, "class documentation materials/FFFMaterialProperties")
	assert.NotContains(t, msg, "brands/Brand")
}

func TestGenerateHTMLPages(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("docs/markdown/page.md", "# Title\n\n|A|B|\n|:--|:--|\n|1|2|\n")

	catalog := schema.NewCatalog("")
	result, err := New(catalog, Options{
		SourceDir: p.Path("docs"),
		OutDir:    p.Path("out"),
		Files:     []string{"page"},
		HTML:      true,
	}).Generate()
	require.NoError(t, err)
	require.Len(t, result.Operations, 2)

	html := result.Operations[1].(*generator.WriteFileOp)
	assert.Equal(t, p.Path("out", "page.html"), html.Path)
	assert.Contains(t, string(html.Content), `<h1 id="title">Title</h1>`)
	assert.Contains(t, string(html.Content), "<table>")
}

func TestGenerateClean(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("docs/markdown/page.md", "# Page\n")
	p.WriteFile("out/page.md", "old")
	p.WriteFile("out/removed.md", "old")
	p.WriteFile("out/removed.svg", "old")
	p.WriteFile("out/keep.txt", "notes")

	result, err := New(schema.NewCatalog(""), Options{
		SourceDir: p.Path("docs"),
		OutDir:    p.Path("out"),
		Files:     []string{"page"},
		Clean:     true,
	}).Generate()
	require.NoError(t, err)

	var removed []string
	for _, op := range result.Operations {
		if rm, ok := op.(*generator.RemoveFileOp); ok {
			removed = append(removed, rm.Path)
		}
	}
	assert.Equal(t, []string{p.Path("out", "removed.md"), p.Path("out", "removed.svg")}, removed)
}

func TestPlantumlNested(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("docs/plantuml/outer.plantuml", `{{ plantuml "inner.plantuml" }}`)
	p.WriteFile("docs/plantuml/inner.plantuml", "@startuml\n@enduml\n")
	p.WriteFile("docs/markdown/page.md", `{{ plantuml "outer.plantuml" }}`)

	_, err := New(schema.NewCatalog(""), Options{
		SourceDir: p.Path("docs"),
		OutDir:    p.Path("out"),
		Files:     []string{"page"},
	}).Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested inside outer")
}

type fakeRenderer struct {
	outDir  string
	sources []string
}

func (f *fakeRenderer) Render(_ context.Context, outDir string, sources []string) error {
	f.outDir = outDir
	f.sources = sources
	return nil
}

func TestRenderDiagrams(t *testing.T) {
	g := New(schema.NewCatalog(""), Options{OutDir: "/tmp/docs"})
	renderer := &fakeRenderer{}

	require.NoError(t, g.RenderDiagrams(context.Background(), renderer, &Output{}))
	assert.Nil(t, renderer.sources)

	out := &Output{Diagrams: []string{"/tmp/docs/a.plantuml"}}
	require.NoError(t, g.RenderDiagrams(context.Background(), renderer, out))
	assert.Equal(t, "/tmp/docs", renderer.outDir)
	assert.Equal(t, out.Diagrams, renderer.sources)

	assert.NoError(t, g.RenderDiagrams(context.Background(), nil, out))
}

func TestPlantUMLRenderMissingJar(t *testing.T) {
	p := NewPlantUML(PlantUMLOptions{Jar: filepath.Join(t.TempDir(), "missing.jar")})

	assert.NoError(t, p.Render(context.Background(), t.TempDir(), nil))

	err := p.Render(context.Background(), t.TempDir(), []string{"a.plantuml"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnsureJar(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/plantuml.jar" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jar bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "lib", "plantuml.jar")
	ctx := context.Background()

	require.NoError(t, EnsureJar(ctx, server.Client(), path, server.URL+"/plantuml.jar"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jar bytes", string(content))

	// Present jars are not downloaded again.
	require.NoError(t, EnsureJar(ctx, server.Client(), path, server.URL+"/plantuml.jar"))
	assert.Equal(t, int32(1), hits.Load())

	missing := filepath.Join(dir, "other.jar")
	err = EnsureJar(ctx, server.Client(), missing, server.URL+"/gone.jar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NoFileExists(t, missing)

	err = EnsureJar(ctx, nil, missing, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no download URL")

	entries, err := os.ReadDir(filepath.Join(dir, "lib"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}
