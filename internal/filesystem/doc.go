// Package filesystem finds definition, example and template files.
//
// Walks skip hidden entries and well-known tool directories so that
// editor swap files or a node_modules next to the docs sources never end
// up parsed as definitions.
//
// # Usage
//
// List the YAML files directly inside a directory:
//
//	files, err := filesystem.Find("data", "*.yaml", filesystem.WalkOptions{MaxDepth: 1})
//
// Custom walk with ignore patterns:
//
//	err := filesystem.Walk("docs_src", filesystem.WalkOptions{
//	    IgnorePatterns: []string{"*.bak"},
//	}, func(path string, info os.FileInfo) error {
//	    return nil
//	})
package filesystem
