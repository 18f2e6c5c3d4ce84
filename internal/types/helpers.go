package types

import (
	"fmt"

	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// Basenames of the reference indirection schemas.
const (
	SlugReference = "slug_reference"
	UUIDReference = "uuid_reference"
)

// ReferenceStrategy controls how references to other entities resolve.
type ReferenceStrategy string

const (
	// ReferenceDirect resolves to a plain $ref to the entity's schema file.
	ReferenceDirect ReferenceStrategy = "direct"
	// ReferenceUnion resolves to oneOf: the entity, a slug reference or a UUID reference.
	ReferenceUnion ReferenceStrategy = "union"
)

// ParseReferenceStrategy validates a configured strategy name.
func ParseReferenceStrategy(s string) (ReferenceStrategy, error) {
	switch ReferenceStrategy(s) {
	case ReferenceDirect, ReferenceUnion:
		return ReferenceStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown reference strategy '%s' (supported: direct, union)", s)
	}
}

// UUID is the fragment for UUID strings.
func UUID() *fragment.Object {
	return fragment.Obj("type", "string", "format", "uuid")
}

// Array wraps an item fragment in an array schema.
func Array(item *fragment.Object) *fragment.Object {
	return fragment.Obj("type", "array", "items", item)
}

// Ref points at another generated schema file by basename.
func Ref(basename string) *fragment.Object {
	return fragment.Obj("$ref", basename+".schema.json")
}

// RefOrLink accepts the full entity, a slug reference or a UUID reference.
func RefOrLink(basename string) *fragment.Object {
	return fragment.Obj("oneOf", fragment.Arr(
		Ref(basename),
		Ref(SlugReference),
		Ref(UUIDReference),
	))
}

// Reference resolves a reference to basename with the given strategy.
func Reference(strategy ReferenceStrategy, basename string) *fragment.Object {
	if strategy == ReferenceUnion {
		return RefOrLink(basename)
	}
	return Ref(basename)
}

// Enum is a closed string enumeration over the non-deprecated items of e,
// taking each item's value from field (usually "name").
func Enum(e *schema.Enum, field string) (*fragment.Object, error) {
	values, err := e.Values(field)
	if err != nil {
		return nil, err
	}
	return fragment.Obj("type", "string", "enum", values), nil
}

// IsDirectRef reports whether frag is a plain $ref.
func IsDirectRef(frag *fragment.Object) bool {
	return frag.Has("$ref")
}

// IsUUID reports whether frag is a UUID string.
func IsUUID(frag *fragment.Object) bool {
	return frag.String("format") == "uuid"
}
