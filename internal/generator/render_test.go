package generator

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"markdown/simple.md":       {Data: []byte("# {{ .Name }}\n")},
	"markdown/invalid.md":      {Data: []byte("{{ .Name }")},
	"markdown/with_helpers.md": {Data: []byte(helpersTemplate)},
}

const helpersTemplate = `Original: {{ .Name }}
PascalCase: {{ pascalCase .Name }}
SnakeCase: {{ snakeCase .Class }}
Code: {{ code .Name }}
Upper: {{ upper .Name }}
Title: {{ title "material tags" }}
Quoted: {{ quote .Name }}
Default: {{ default "unknown" .Empty }}
{{- with dict "key1" "value1" "key2" 42 }}
Dict key1: {{ .key1 }}
Dict key2: {{ .key2 }}
{{- end }}
List: {{ join (split "a,b" ",") "+" }} {{ len (list 1 2 3) }}
`

func TestRenderString(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name        string
		templateStr string
		data        any
		expected    string
		errContains string
	}{
		{
			name:        "simple template with no data",
			templateStr: "Hello World",
			expected:    "Hello World",
		},
		{
			name:        "template with struct data",
			templateStr: "# {{ .Name }}",
			data:        struct{ Name string }{Name: "Material"},
			expected:    "# Material",
		},
		{
			name:        "template with map data",
			templateStr: "Count: {{ .count }}",
			data:        map[string]any{"count": 42},
			expected:    "Count: 42",
		},
		{
			name:        "template with syntax error",
			templateStr: "{{ .Name }",
			errContains: "failed to parse template",
		},
		{
			name:        "missing map key",
			templateStr: "{{ .missing }}",
			data:        map[string]any{},
			errContains: "failed to render template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := r.RenderString(tt.name, tt.templateStr, tt.data)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(output))
		})
	}
}

func TestRenderFS(t *testing.T) {
	r := NewRenderer()

	output, err := r.RenderFS(testFS, "markdown/simple.md", map[string]any{"Name": "Brand"})
	require.NoError(t, err)
	assert.Equal(t, "# Brand\n", string(output))

	_, err = r.RenderFS(testFS, "markdown/nonexistent.md", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template from fs")

	_, err = r.RenderFS(testFS, "markdown/invalid.md", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestRenderFile(t *testing.T) {
	r := NewRenderer()

	tempFile := filepath.Join(t.TempDir(), "test.md")
	require.NoError(t, os.WriteFile(tempFile, []byte("File: {{ .Name }}"), 0644))

	output, err := r.RenderFile(tempFile, struct{ Name string }{Name: "materials.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "File: materials.yaml", string(output))

	_, err = r.RenderFile(filepath.Join(t.TempDir(), "nonexistent.md"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template file")
}

func TestExtraFunctions(t *testing.T) {
	r := NewRenderer(template.FuncMap{
		"upper":   func(s string) string { return "overridden " + s },
		"shorten": func(s string) string { return s[:3] },
	})

	output, err := r.RenderString("extra", "{{ shorten .Name }} {{ upper .Name }}", map[string]any{"Name": "Material"})
	require.NoError(t, err)
	assert.Equal(t, "Mat overridden Material", string(output))
}

func TestCaching(t *testing.T) {
	r := NewRenderer()

	output, err := r.RenderString("cached", "{{ .Value }}", map[string]int{"Value": 1})
	require.NoError(t, err)
	assert.Equal(t, "1", string(output))
	assert.Len(t, r.cache, 1)

	// Cached by name: the new source is ignored.
	output, err = r.RenderString("cached", "ignored", map[string]int{"Value": 2})
	require.NoError(t, err)
	assert.Equal(t, "2", string(output))
	assert.Len(t, r.cache, 1)

	r.ClearCache()
	assert.Empty(t, r.cache)

	output, err = r.RenderString("cached", "new: {{ .Value }}", map[string]int{"Value": 3})
	require.NoError(t, err)
	assert.Equal(t, "new: 3", string(output))
}

func TestConcurrency(t *testing.T) {
	r := NewRenderer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			output, err := r.RenderString("concurrent", "Number: {{ . }}", n)
			assert.NoError(t, err)
			assert.Equal(t, "Number: "+string(rune('0'+n)), string(output))
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.cache, 1)
}

func TestHelperFunctionsInTemplate(t *testing.T) {
	r := NewRenderer()

	data := map[string]any{
		"Name":  "material_type",
		"Class": "SLAMaterialContainerConnector",
		"Empty": "",
	}

	output, err := r.RenderFS(testFS, "markdown/with_helpers.md", data)
	require.NoError(t, err)

	out := string(output)
	assert.Contains(t, out, "Original: material_type")
	assert.Contains(t, out, "PascalCase: MaterialType")
	assert.Contains(t, out, "SnakeCase: sla_material_container_connector")
	assert.Contains(t, out, "Code: `material_type`")
	assert.Contains(t, out, "Upper: MATERIAL_TYPE")
	assert.Contains(t, out, "Title: Material Tags")
	assert.Contains(t, out, `Quoted: "material_type"`)
	assert.Contains(t, out, "Default: unknown")
	assert.Contains(t, out, "Dict key1: value1")
	assert.Contains(t, out, "Dict key2: 42")
	assert.Contains(t, out, "List: a+b 3")
}

func TestPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"material", "Material"},
		{"material_type", "MaterialType"},
		{"brand_id", "BrandID"},
		{"sla_material_container_connector", "SLAMaterialContainerConnector"},
		{"Material", "Material"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PascalCase(tt.input), "input %q", tt.input)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Material", "material"},
		{"MaterialType", "material_type"},
		{"FFFMaterialProperties", "fff_material_properties"},
		{"SLAMaterialContainerConnector", "sla_material_container_connector"},
		{"already_snake", "already_snake"},
		{"materialPhoto2", "material_photo2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SnakeCase(tt.input), "input %q", tt.input)
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "`PLA`", Code("PLA"))
	assert.Equal(t, "`12`", Code(12))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "", Title(""))
	assert.Equal(t, "Material Tags", Title("material TAGS"))
}

func TestDict(t *testing.T) {
	d, err := Dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, d)

	_, err = Dict("a")
	assert.Error(t, err)

	_, err = Dict(1, 2)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "default", Default("default", nil))
	assert.Equal(t, "default", Default("default", ""))
	assert.Equal(t, "default", Default("default", []any{}))
	assert.Equal(t, "default", Default("default", map[string]any{}))
	assert.Equal(t, 0, Default("default", 0))
	assert.Equal(t, "value", Default("default", "value"))
}

func BenchmarkRenderWithCache(b *testing.B) {
	r := NewRenderer()
	data := struct{ Name string }{Name: "Test"}
	_, _ = r.RenderString("bench", "Hello, {{ .Name }}!", data)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.RenderString("bench", "Hello, {{ .Name }}!", data)
	}
}
