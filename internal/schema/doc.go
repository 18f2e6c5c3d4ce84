// Package schema loads the YAML definition files that describe the product
// data model.
//
// A data directory holds two kinds of documents:
//
//   - entity documents: a mapping with an "objects" list of entity definitions
//   - enum documents: a bare list of enum items
//
// Entity definitions carry typed fields, an optional single parent
// ("inherits") and any number of boolean target flags such as in_opt_db.
// Those flags are kept verbatim so generators can ask for whichever target
// they render.
//
// Definitions are parsed once and treated as read-only afterwards. Structural
// problems are reported together as ValidationErrors with YAML line numbers.
//
//	catalog, err := schema.Load("data")
//	if err != nil {
//	    return err
//	}
//	material, err := catalog.Entity("materials", "Material")
package schema
