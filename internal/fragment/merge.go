package fragment

// Merge combines two fragment values into a new one. Inputs are not modified.
//
// Rules, applied recursively:
//   - a absent (nil): the result is b
//   - both objects: a's entries, then each key of b either merged into the
//     existing entry or appended
//   - both sequences: a's items followed by b's items, no de-duplication
//   - anything else: the result is a
//
// The last rule makes Merge asymmetric. A scalar in b never replaces a scalar
// in a, so overrides can add oneOf/anyOf branches onto a base shape without
// clobbering keywords like "type".
func Merge(a, b any) any {
	if a == nil {
		return Clone(b)
	}
	if o, ok := a.(*Object); ok && o == nil {
		return Clone(b)
	}

	switch ta := a.(type) {
	case *Object:
		tb, ok := b.(*Object)
		if !ok || tb == nil {
			return Clone(a)
		}
		result := CloneObject(ta)
		tb.Each(func(key string, value any) {
			if existing, ok := result.Get(key); ok {
				result.Set(key, Merge(existing, value))
			} else {
				result.Set(key, Clone(value))
			}
		})
		return result
	case []any:
		tb, ok := b.([]any)
		if !ok {
			return Clone(a)
		}
		result := make([]any, 0, len(ta)+len(tb))
		for _, item := range ta {
			result = append(result, Clone(item))
		}
		for _, item := range tb {
			result = append(result, Clone(item))
		}
		return result
	default:
		return a
	}
}

// MergeObjects is Merge for two objects. A nil override returns a copy of base.
func MergeObjects(base, override *Object) *Object {
	if base == nil && override == nil {
		return New()
	}
	if override == nil {
		return CloneObject(base)
	}
	if base == nil {
		return CloneObject(override)
	}
	return Merge(base, override).(*Object)
}
