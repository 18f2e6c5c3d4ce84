// Package generator writes generated files.
//
// # Features
//
//   - Template rendering with helper functions
//   - Write and remove operations validated before anything touches the disk
//   - Transactions that restore previous file contents on failure
//   - Check mode with colored unified diffs against the files on disk
//
// # Transactions
//
//	tx := generator.NewTransaction()
//	tx.AddFile("schema/brand.schema.json", content1, 0644)
//	tx.AddFile("schema/material.schema.json", content2, 0644)
//
//	if err := tx.Commit(ctx); err != nil {
//	    // Touched files were restored
//	    return err
//	}
//
// Most callers build a []Operation and hand it to Execute, which also
// handles dry runs and check mode.
package generator
