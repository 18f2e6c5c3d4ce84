package fragment

import (
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a schema mapping with insertion-ordered keys.
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

// New returns an empty object.
func New() *Object {
	return &Object{m: orderedmap.New[string, any]()}
}

// Obj builds an object from alternating key/value arguments.
// It panics on malformed arguments, so it is meant for literals only.
//
// Example:
//
//	fragment.Obj("type", "string", "format", "uuid")
func Obj(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("fragment.Obj: odd number of arguments")
	}

	o := New()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("fragment.Obj: key %v is not a string", kv[i]))
		}
		o.Set(key, kv[i+1])
	}
	return o
}

// Arr builds a sequence value.
func Arr(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// Set stores value under key. Existing keys keep their position.
func (o *Object) Set(key string, value any) *Object {
	o.m.Set(key, value)
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	return o.m.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, ok := o.m.Delete(key)
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every entry in insertion order.
func (o *Object) Each(fn func(key string, value any)) {
	if o == nil {
		return
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Object returns the child object stored under key, or nil.
func (o *Object) Object(key string) *Object {
	v, _ := o.Get(key)
	child, _ := v.(*Object)
	return child
}

// List returns the sequence stored under key, or nil.
func (o *Object) List(key string) []any {
	v, _ := o.Get(key)
	list, _ := v.([]any)
	return list
}

// String returns the string stored under key, or "".
func (o *Object) String(key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}

// Filter returns a copy of o holding only the entries keep accepts.
func (o *Object) Filter(keep func(key string) bool) *Object {
	result := New()
	o.Each(func(key string, value any) {
		if keep(key) {
			result.Set(key, Clone(value))
		}
	})
	return result
}

// MarshalJSON encodes the object with its key order intact.
func (o *Object) MarshalJSON() ([]byte, error) {
	return encodeCompact(o)
}

// Clone returns a deep copy of a fragment value.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return (*Object)(nil)
		}
		result := New()
		t.Each(func(key string, value any) {
			result.Set(key, Clone(value))
		})
		return result
	case []any:
		result := make([]any, len(t))
		for i, item := range t {
			result[i] = Clone(item)
		}
		return result
	case []string:
		result := make([]any, len(t))
		for i, item := range t {
			result[i] = item
		}
		return result
	default:
		return v
	}
}

// CloneObject is Clone for objects.
func CloneObject(o *Object) *Object {
	return Clone(o).(*Object)
}

// Equal reports whether two fragment values are structurally identical,
// including object key order.
func Equal(a, b any) bool {
	switch ta := a.(type) {
	case *Object:
		tb, ok := b.(*Object)
		if !ok || ta.Len() != tb.Len() {
			return false
		}
		ka, kb := ta.Keys(), tb.Keys()
		for i := range ka {
			if ka[i] != kb[i] {
				return false
			}
			va, _ := ta.Get(ka[i])
			vb, _ := tb.Get(kb[i])
			if !Equal(va, vb) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !Equal(ta[i], tb[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
