package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// ErrUnknownType is returned when a type name has no registry entry.
var ErrUnknownType = errors.New("unknown type")

// Func builds a fragment from the metadata of the field being resolved.
// The field may be nil when a type is resolved outside any field.
type Func func(f *schema.Field) (*fragment.Object, error)

// Entry is a registry value: either a fixed fragment or a Func.
type Entry struct {
	fixed *fragment.Object
	fn    Func
}

// Fixed returns an entry that always resolves to frag.
func Fixed(frag *fragment.Object) Entry {
	return Entry{fixed: frag}
}

// FuncEntry returns an entry that calls fn for every resolution.
func FuncEntry(fn Func) Entry {
	return Entry{fn: fn}
}

// IsFixed reports whether the entry holds a fixed fragment.
func (e Entry) IsFixed() bool {
	return e.fn == nil
}

func (e Entry) resolve(f *schema.Field) (*fragment.Object, error) {
	if e.fn != nil {
		return e.fn(f)
	}
	return e.fixed, nil
}

// Options configures the built-in primitives.
type Options struct {
	// PatternKey is the field key holding a regex for "string" fields,
	// e.g. "opt_db_regex". Empty disables pattern injection.
	PatternKey string
}

// Registry holds the type entries of one generation run.
type Registry struct {
	entries map[string]Entry
	opts    Options
}

// NewRegistry creates a registry with the built-in primitives registered.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		opts:    opts,
	}
	r.registerBuiltins()
	return r
}

// Register stores an entry under name, replacing any previous one.
func (r *Registry) Register(name string, e Entry) {
	r.entries[name] = e
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns a fresh copy of the fragment for type name.
// Unregistered set(T)/list(T) names resolve to an array of T.
func (r *Registry) Resolve(name string, f *schema.Field) (*fragment.Object, error) {
	if e, ok := r.entries[name]; ok {
		frag, err := e.resolve(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		if frag == nil {
			return nil, fmt.Errorf("type %s resolved to nothing", name)
		}
		return fragment.CloneObject(frag), nil
	}

	if _, inner, ok := ParseComposite(name); ok {
		item, err := r.Resolve(inner, f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		return Array(item), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

// ParseComposite splits "set(T)" or "list(T)" into its container and item type.
func ParseComposite(name string) (container, inner string, ok bool) {
	for _, prefix := range []string{"set", "list"} {
		if strings.HasPrefix(name, prefix+"(") && strings.HasSuffix(name, ")") {
			inner = name[len(prefix)+1 : len(name)-1]
			if inner == "" {
				return "", "", false
			}
			return prefix, inner, true
		}
	}
	return "", "", false
}
