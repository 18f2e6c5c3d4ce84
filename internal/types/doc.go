// Package types maps field type names to JSON Schema fragments.
//
// A Registry is built once per generation run. Entries are either a fixed
// fragment or a function of the field being resolved, which lets primitives
// read per-field metadata such as min, max or a regex key:
//
//	reg := types.NewRegistry(types.Options{PatternKey: "opt_db_regex"})
//	reg.Register("Country", types.Fixed(fragment.Obj("type", "string", "minLength", 2, "maxLength", 2)))
//	frag, err := reg.Resolve("list(Country)", field)
//
// "set(T)" and "list(T)" resolve to an array of T unless registered explicitly.
// Registering a name twice replaces the earlier entry.
package types
