package types

import (
	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// ColorPattern matches lowercase hex colors with an optional alpha byte.
const ColorPattern = "^#[a-f0-9]{6}([a-f0-9]{2})?$"

// TimestampDescription annotates timestamp fields.
const TimestampDescription = "Unix timestamp (seconds since epoch, UTC)"

func (r *Registry) registerBuiltins() {
	r.Register("string", infallible(r.stringSchema))
	r.Register("bytes", infallible(r.stringSchema))
	r.Register("number", infallible(numberSchema))
	r.Register("int", infallible(numberSchema))
	r.Register("uint", infallible(uintSchema))
	r.Register("bool", Fixed(fragment.Obj("type", "boolean")))
	r.Register("color", Fixed(fragment.Obj("type", "string", "pattern", ColorPattern)))
	r.Register("timestamp", Fixed(fragment.Obj("type", "number", "description", TimestampDescription)))
	r.Register("UUID", Fixed(UUID()))
}

func infallible(fn func(f *schema.Field) *fragment.Object) Entry {
	return FuncEntry(func(f *schema.Field) (*fragment.Object, error) {
		return fn(f), nil
	})
}

// StringSchema resolves "string" with r's options. Domain types that are
// strings underneath (e.g. Signature) reuse it.
func (r *Registry) StringSchema(f *schema.Field) (*fragment.Object, error) {
	return r.stringSchema(f), nil
}

// stringSchema adds a pattern when the field carries one under the
// configured pattern key.
func (r *Registry) stringSchema(f *schema.Field) *fragment.Object {
	result := fragment.Obj("type", "string")
	if f == nil || r.opts.PatternKey == "" {
		return result
	}
	if pattern, ok := f.Extension(r.opts.PatternKey); ok {
		result.Set("pattern", pattern)
	}
	return result
}

func numberSchema(f *schema.Field) *fragment.Object {
	result := fragment.Obj("type", "number")
	if f == nil {
		return result
	}
	if f.Min != nil {
		result.Set("minimum", *f.Min)
	}
	if f.Max != nil {
		result.Set("maximum", *f.Max)
	}
	return result
}

// uintSchema is numberSchema with the minimum forced to zero.
func uintSchema(f *schema.Field) *fragment.Object {
	result := fragment.Obj("type", "number", "minimum", 0)
	if f != nil && f.Max != nil {
		result.Set("maximum", *f.Max)
	}
	return result
}
