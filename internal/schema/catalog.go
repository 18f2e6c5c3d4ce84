package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog holds every entity document and enum of a data directory.
type Catalog struct {
	Dir       string
	documents map[string]*EntityDocument
	enums     map[string]*Enum
}

// NewCatalog creates an empty catalog for dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		Dir:       dir,
		documents: make(map[string]*EntityDocument),
		enums:     make(map[string]*Enum),
	}
}

// AddDocument registers an entity document. Names are shared with enums.
func (c *Catalog) AddDocument(doc *EntityDocument) error {
	if err := c.checkFree(doc.Name); err != nil {
		return err
	}
	for _, entity := range doc.Objects {
		if entity != nil {
			entity.document = doc.Name
		}
	}
	c.documents[doc.Name] = doc
	return nil
}

// AddEnum registers an enum document.
func (c *Catalog) AddEnum(enum *Enum) error {
	if err := c.checkFree(enum.Name); err != nil {
		return err
	}
	c.enums[enum.Name] = enum
	return nil
}

func (c *Catalog) checkFree(name string) error {
	if _, ok := c.documents[name]; ok {
		return fmt.Errorf("definition document %q loaded twice", name)
	}
	if _, ok := c.enums[name]; ok {
		return fmt.Errorf("definition document %q loaded twice", name)
	}
	return nil
}

// Document returns the entity document called name ("materials" or "materials.yaml").
func (c *Catalog) Document(name string) (*EntityDocument, error) {
	doc, ok := c.documents[trimExt(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	return doc, nil
}

// Entity returns the entity className declared in document.
func (c *Catalog) Entity(document, className string) (*Entity, error) {
	doc, err := c.Document(document)
	if err != nil {
		return nil, err
	}
	entity, ok := doc.Entity(className)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s.yaml", ErrEntityNotFound, className, doc.Name)
	}
	return entity, nil
}

// Parent returns the entity that e inherits from.
func (c *Catalog) Parent(e *Entity) (*Entity, error) {
	if e.Inherits == "" {
		return nil, fmt.Errorf("%w: %s has no parent", ErrEntityNotFound, e.Name)
	}
	return c.Entity(e.document, e.Inherits)
}

// Enum returns the enum called name ("material_tags" or "material_tags.yaml").
func (c *Catalog) Enum(name string) (*Enum, error) {
	enum, ok := c.enums[trimExt(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEnumNotFound, name)
	}
	return enum, nil
}

// Documents returns the entity documents sorted by name.
func (c *Catalog) Documents() []*EntityDocument {
	names := make([]string, 0, len(c.documents))
	for name := range c.documents {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]*EntityDocument, len(names))
	for i, name := range names {
		docs[i] = c.documents[name]
	}
	return docs
}

// Entities returns every entity, grouped by document in name order.
func (c *Catalog) Entities() []*Entity {
	var entities []*Entity
	for _, doc := range c.Documents() {
		entities = append(entities, doc.Objects...)
	}
	return entities
}

// Enums returns the enums sorted by name.
func (c *Catalog) Enums() []*Enum {
	names := make([]string, 0, len(c.enums))
	for name := range c.enums {
		names = append(names, name)
	}
	sort.Strings(names)

	enums := make([]*Enum, len(names))
	for i, name := range names {
		enums[i] = c.enums[name]
	}
	return enums
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, ".yaml")
}
