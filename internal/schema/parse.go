package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/filesystem"
	"gopkg.in/yaml.v3"
)

// Load reads every *.yaml file directly inside dir into a Catalog.
func Load(dir string) (*Catalog, error) {
	catalog := NewCatalog(dir)

	files, err := filesystem.Find(dir, "*.yaml", filesystem.WalkOptions{MaxDepth: 1})
	if err != nil {
		return nil, fmt.Errorf("listing definitions: %w", err)
	}
	for _, path := range files {
		if err := catalog.loadFile(path); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	kind, err := detectKind(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	switch kind {
	case yaml.MappingNode:
		doc, err := ParseEntityDocument(name, data)
		if err != nil {
			return err
		}
		doc.Path = path
		return c.AddDocument(doc)
	default:
		enum, err := ParseEnum(name, data)
		if err != nil {
			return err
		}
		enum.Path = path
		return c.AddEnum(enum)
	}
}

// detectKind reports whether a document is a mapping (entities) or a
// sequence (enum items).
func detectKind(data []byte) (yaml.Kind, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return 0, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return 0, fmt.Errorf("empty YAML document")
	}

	switch kind := root.Content[0].Kind; kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return kind, nil
	default:
		return 0, fmt.Errorf("top level must be a mapping of entities or a list of enum items")
	}
}

// ParseEntityDocument parses and validates an entity document.
func ParseEntityDocument(name string, data []byte) (*EntityDocument, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, fmt.Errorf("%s.yaml: failed to parse YAML: %w", name, err)
	}

	if !hasKey(&root, "objects") {
		return nil, ValidationErrors{{
			File:       name + ".yaml",
			Field:      "objects",
			Message:    "entity document must contain an 'objects' list",
			Suggestion: "enum documents are bare lists; entity documents wrap entities under 'objects'",
		}}
	}

	doc := &EntityDocument{Name: name}
	if err := root.Decode(doc); err != nil {
		return nil, fmt.Errorf("%s.yaml: failed to decode entities: %w", name, err)
	}

	for _, entity := range doc.Objects {
		if entity != nil {
			entity.document = name
		}
	}

	if err := ValidateEntityDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseEnum parses and validates an enum document.
func ParseEnum(name string, data []byte) (*Enum, error) {
	var items []EnumItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s.yaml: failed to decode enum items: %w", name, err)
	}

	enum := &Enum{Name: name, Items: items}
	if err := ValidateEnum(enum); err != nil {
		return nil, err
	}
	return enum, nil
}

func hasKey(root *yaml.Node, key string) bool {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return false
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}
