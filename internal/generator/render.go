package generator

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Renderer handles template parsing and rendering with caching
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex // Protect cache for concurrent access
}

// NewRenderer creates a renderer with the built-in helpers plus any extra
// functions. Later maps override earlier names.
func NewRenderer(extra ...template.FuncMap) *Renderer {
	funcMap := defaultFuncMap()
	for _, m := range extra {
		for name, fn := range m {
			funcMap[name] = fn
		}
	}
	return &Renderer{
		funcMap: funcMap,
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders a template from a string
// The name is used for caching and error messages
func (r *Renderer) RenderString(name, templateStr string, data any) ([]byte, error) {
	return r.render("string:"+name, name, func() ([]byte, error) {
		return []byte(templateStr), nil
	}, data)
}

// RenderFS renders a template from a filesystem such as an embed.FS or os.DirFS.
func (r *Renderer) RenderFS(fsys fs.FS, path string, data any) ([]byte, error) {
	return r.render(fmt.Sprintf("fs:%v:%s", fsys, path), path, func() ([]byte, error) {
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template from fs '%s': %w", path, err)
		}
		return b, nil
	}, data)
}

// RenderFile renders a template from a file path
func (r *Renderer) RenderFile(path string, data any) ([]byte, error) {
	return r.render("file:"+path, path, func() ([]byte, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file '%s': %w", path, err)
		}
		return b, nil
	}, data)
}

// ClearCache clears the template cache (useful for testing)
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func (r *Renderer) render(cacheKey, name string, load func() ([]byte, error), data any) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[cacheKey]
	r.mu.RUnlock()

	if !ok {
		src, err := load()
		if err != nil {
			return nil, err
		}

		tmpl, err = template.New(name).Funcs(r.funcMap).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
		}

		r.mu.Lock()
		r.cache[cacheKey] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.Bytes(), nil
}

// defaultFuncMap returns the default template function map
func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // material_type → MaterialType
		"snakeCase":  SnakeCase,  // MaterialType → material_type

		// String manipulation
		"code":      Code,  // PLA → `PLA`
		"quote":     Quote, // test → "test"
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     Title,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"split":     strings.Split,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,

		// Utilities
		"dict":    Dict,    // Create map for passing multiple values
		"list":    List,    // Create slice for passing multiple values
		"default": Default, // Provide default value if nil/empty
	}
}

// PascalCase converts snake_case to PascalCase.
// Examples: material_type → MaterialType, brand_id → BrandID
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	if !strings.Contains(s, "_") {
		return capitalizeWord(s)
	}

	parts := strings.Split(s, "_")
	for i, part := range parts {
		parts[i] = capitalizeWord(part)
	}
	return strings.Join(parts, "")
}

// capitalizeWord capitalizes a word with special handling for acronyms
func capitalizeWord(s string) string {
	if s == "" {
		return ""
	}

	acronyms := map[string]string{
		"id":   "ID",
		"uuid": "UUID",
		"url":  "URL",
		"sla":  "SLA",
		"fff":  "FFF",
	}
	if acronym, ok := acronyms[strings.ToLower(s)]; ok {
		return acronym
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// SnakeCase converts PascalCase or camelCase to snake_case
// Examples: MaterialType → material_type, SLAMaterialContainerConnector → sla_material_container_connector
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}

	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// Split "aB" and the last capital of an acronym ("SLAMaterial" → "sla_material").
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// Code wraps s in Markdown inline code backticks.
func Code(s any) string {
	return "`" + fmt.Sprint(s) + "`"
}

// Quote wraps a string in double quotes
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Title converts a string to title case (first letter of each word capitalized)
func Title(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// Dict creates a map from alternating key-value pairs
// Usage in template: {{ template "partial" (dict "key1" val1 "key2" val2) }}
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}

	result := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T at position %d", values[i], i)
		}
		result[key] = values[i+1]
	}
	return result, nil
}

// List collects its arguments into a slice.
func List(values ...any) []any {
	return values
}

// Default returns the default value if the given value is nil or empty
func Default(defaultVal, val any) any {
	if val == nil {
		return defaultVal
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return defaultVal
		}
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}

	// Numeric zero is a valid value
	return val
}
