// Package validate checks example documents against generated schemas.
//
// An example named <name>.yaml is validated against <name>.schema.json in
// the schema directory. Relative $refs between schema files are resolved by
// file name from that same directory, whatever $id the files carry.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/quill/internal/emit"
	"github.com/simonhull/firebird-suite/quill/internal/filesystem"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
)

var (
	// ErrNoSchema is returned when an example has no matching schema file.
	ErrNoSchema = errors.New("no schema for example")
	// ErrInvalidDocument is returned when an example fails validation.
	ErrInvalidDocument = errors.New("document does not match schema")
)

// Harness validates documents against the schemas of one directory.
type Harness struct {
	schemaDir string
	log       logger.Logger
}

// New creates a harness reading schemas from schemaDir. A nil logger
// discards output.
func New(schemaDir string, log logger.Logger) (*Harness, error) {
	abs, err := filepath.Abs(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("resolving schema directory: %w", err)
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Harness{schemaDir: abs, log: log}, nil
}

// Result is the outcome of validating one example file.
type Result struct {
	Example string // example file name
	Schema  string // schema file name
	Err     error  // nil when valid
}

// ValidateDir validates every *.yaml file directly inside dir, in name
// order. Per-example failures are reported in the results; the returned
// error is only for problems reading dir itself.
func (h *Harness) ValidateDir(dir string) ([]Result, error) {
	matches, err := filesystem.Find(dir, "*.yaml", filesystem.WalkOptions{MaxDepth: 1})
	if err != nil {
		return nil, fmt.Errorf("listing examples: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, example := range matches {
		name := strings.TrimSuffix(filepath.Base(example), ".yaml")
		results = append(results, Result{
			Example: filepath.Base(example),
			Schema:  emit.FileName(name),
			Err:     h.ValidateFile(example),
		})
	}
	return results, nil
}

// ValidateFile validates the YAML file at path against the schema sharing
// its base name.
func (h *Harness) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading example: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return h.Validate(name, data)
}

// Validate checks the YAML (or JSON) document data against the schema
// with the given basename.
func (h *Harness) Validate(basename string, data []byte) error {
	h.log.Info(fmt.Sprintf("Testing %s.yaml against %s", basename, emit.FileName(basename)))

	instance, err := decodeInstance(data)
	if err != nil {
		return fmt.Errorf("%s: %w", basename, err)
	}

	root, err := h.load(emit.FileName(basename))
	if err != nil {
		return err
	}

	resolved, err := root.Resolve(&jsonschema.ResolveOptions{
		BaseURI: root.ID,
		Loader:  h.loadURI,
	})
	if err != nil {
		return fmt.Errorf("resolving %s: %w", emit.FileName(basename), err)
	}

	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, basename, err)
	}
	return nil
}

// load reads a schema file and rebases its $id onto its file URL, so
// relative refs resolve next to it.
func (h *Harness) load(fileName string) (*jsonschema.Schema, error) {
	full := filepath.Join(h.schemaDir, fileName)
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found in %s", ErrNoSchema, fileName, h.schemaDir)
		}
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	s.ID = fileURL(full)
	return &s, nil
}

func (h *Harness) loadURI(uri *url.URL) (*jsonschema.Schema, error) {
	if uri.Scheme != "file" {
		return nil, fmt.Errorf("refusing to load %s: only schema files are resolved", uri)
	}
	return h.load(path.Base(uri.Path))
}

func fileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

// decodeInstance parses YAML into the plain JSON value model the
// validator expects (float64 numbers, map[string]any objects).
func decodeInstance(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("document is not representable as JSON: %w", err)
	}

	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, err
	}
	return instance, nil
}
