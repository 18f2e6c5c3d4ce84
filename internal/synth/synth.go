// Package synth turns entity definitions into JSON Schema fragments.
package synth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

var (
	// ErrNotMarked is returned when an entity lacks the target's filter flag.
	ErrNotMarked = errors.New("entity not marked for target")
	// ErrAmbiguousInherit is returned when an entity has a parent and the
	// caller did not say whether to merge it.
	ErrAmbiguousInherit = errors.New("parent inclusion not specified")
	// ErrUnknownField is returned when a whitelist or blacklist names a field
	// the entity does not have.
	ErrUnknownField = errors.New("nonexistent field")
)

// Target names the flags that select one generation target.
type Target struct {
	Required string // per-field flag marking a property as required, e.g. "required_in_opt_db"
	Filter   string // per-entity and per-field inclusion flag, e.g. "in_opt_db"
}

// Inherit states what to do with an entity's parent.
type Inherit int

const (
	// InheritUnset is only valid for entities without a parent.
	InheritUnset Inherit = iota
	// InheritMerge merges the parent's resolved fragment into the result.
	InheritMerge
	// InheritSkip leaves the parent out. The result is then open
	// (no unevaluatedProperties) because it will be combined with a larger shape.
	InheritSkip
)

func (i Inherit) String() string {
	switch i {
	case InheritMerge:
		return "merge"
	case InheritSkip:
		return "skip"
	default:
		return "unset"
	}
}

// Options tune a single synthesis.
type Options struct {
	Inherit   Inherit
	Whitelist []string // nil keeps every field
	Blacklist []string
}

// ParentResolver finds the entity another entity inherits from.
type ParentResolver interface {
	Parent(e *schema.Entity) (*schema.Entity, error)
}

// Synthesizer builds fragments for one target.
type Synthesizer struct {
	types   *types.Registry
	parents ParentResolver
	target  Target
}

// New creates a synthesizer resolving field types through reg.
func New(reg *types.Registry, parents ParentResolver, target Target) *Synthesizer {
	return &Synthesizer{
		types:   reg,
		parents: parents,
		target:  target,
	}
}

// Target returns the flags the synthesizer filters on.
func (s *Synthesizer) Target() Target {
	return s.target
}

// Synthesize builds the object schema for e.
//
// Properties follow field declaration order. Fields switched off for the
// target, derived fields and excluded fields are left out. With InheritMerge
// the parent's fragment is merged underneath, so the entity's own
// declarations win on collision.
func (s *Synthesizer) Synthesize(e *schema.Entity, opts Options) (*fragment.Object, error) {
	if !e.Flag(s.target.Filter) {
		return nil, fmt.Errorf("%w: %s is not marked %s", ErrNotMarked, e.Name, s.target.Filter)
	}
	if e.Inherits != "" && opts.Inherit == InheritUnset {
		return nil, fmt.Errorf("%w: %s has parent %s, specify whether to include it", ErrAmbiguousInherit, e.Name, e.Inherits)
	}

	exclusion := newExclusion(opts)
	known := make(map[string]bool)

	properties := fragment.New()
	required := fragment.Arr()

	for i := range e.Fields {
		field := &e.Fields[i]
		if !field.Bool(s.target.Filter, true) || field.IsDerived() {
			continue
		}
		known[field.Name] = true
		if exclusion.excludes(field.Name) {
			continue
		}

		prop, err := s.property(field)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e.Name, field.Name, err)
		}
		properties.Set(field.Name, prop)

		if field.Bool(s.target.Required, false) {
			required = append(required, field.Name)
		}
	}

	result := fragment.Obj(
		"type", "object",
		"title", e.Name,
		"properties", properties,
		"required", required,
	)
	if opts.Inherit != InheritSkip {
		result.Set("unevaluatedProperties", false)
	}

	if e.Inherits != "" && opts.Inherit == InheritMerge {
		parent, err := s.parents.Parent(e)
		if err != nil {
			return nil, fmt.Errorf("resolving parent of %s: %w", e.Name, err)
		}
		inherited, err := s.Synthesize(parent, Options{Inherit: InheritMerge})
		if err != nil {
			return nil, fmt.Errorf("resolving parent of %s: %w", e.Name, err)
		}
		for _, name := range inherited.Object("properties").Keys() {
			known[name] = true
		}
		result = fragment.MergeObjects(result, inherited)
	}

	if err := exclusion.check(e.Name, known); err != nil {
		return nil, err
	}

	// Inherited properties go through the same exclusion as the entity's own.
	result.Set("properties", result.Object("properties").Filter(func(name string) bool {
		return !exclusion.excludes(name)
	}))
	result.Set("required", filterRequired(result.List("required"), exclusion))

	return result, nil
}

// property resolves one field into its property schema.
func (s *Synthesizer) property(field *schema.Field) (*fragment.Object, error) {
	prop, err := s.types.Resolve(field.Type, field)
	if err != nil {
		return nil, err
	}

	if field.Unit != "" {
		prop.Set("x-unit", field.Unit)
	}

	// A referenced entity's example would describe the wrong object.
	if field.Example != nil && !types.IsUUID(prop) && !types.IsDirectRef(prop) {
		prop.Set("x-example", field.Example)
	}

	if desc := field.Description.String(); desc != "" {
		prop.Set("description", desc)
	}

	return prop, nil
}

type exclusion struct {
	whitelist map[string]bool
	blacklist map[string]bool
}

func newExclusion(opts Options) exclusion {
	ex := exclusion{blacklist: toSet(opts.Blacklist)}
	if opts.Whitelist != nil {
		ex.whitelist = toSet(opts.Whitelist)
	}
	return ex
}

func (ex exclusion) excludes(name string) bool {
	if ex.whitelist != nil && !ex.whitelist[name] {
		return true
	}
	return ex.blacklist[name]
}

// check fails when a listed name is not a field of the resolved entity.
func (ex exclusion) check(entity string, known map[string]bool) error {
	for _, list := range []struct {
		kind  string
		names map[string]bool
	}{
		{"whitelisted", ex.whitelist},
		{"blacklisted", ex.blacklist},
	} {
		var missing []string
		for name := range list.names {
			if !known[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("%w: %s: %s %s", ErrUnknownField, entity, list.kind, strings.Join(missing, ", "))
		}
	}
	return nil
}

// filterRequired drops excluded names and repeats introduced by inheritance.
func filterRequired(required []any, ex exclusion) []any {
	seen := make(map[string]bool, len(required))
	result := fragment.Arr()
	for _, item := range required {
		name, _ := item.(string)
		if ex.excludes(name) || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
