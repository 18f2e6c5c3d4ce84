// Package fragment models JSON Schema documents as ordered trees.
//
// A fragment value is one of:
//
//   - *Object: a mapping whose keys keep insertion order
//   - []any: a sequence
//   - a JSON scalar (string, bool, int, float64, nil)
//
// Key order is significant: generated schemas list properties in the order
// the source definitions declare them, so output can be diffed reliably.
//
// Fragments are treated as immutable once handed out. Merge and Clone always
// build new trees and never modify their inputs.
//
// # Merging
//
//	base := fragment.Obj("type", "object", "properties", fragment.Obj("a", fragment.Obj("type", "string")))
//	over := fragment.Obj("properties", fragment.Obj("b", fragment.Obj("type", "number")))
//	merged := fragment.Merge(base, over) // properties: a, b
//
// Merge is left-biased on scalar collisions; see Merge for the exact rules.
package fragment
