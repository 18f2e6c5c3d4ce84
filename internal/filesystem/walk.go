package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultIgnoreDirs are common directories to skip during traversal
var DefaultIgnoreDirs = []string{
	"node_modules", "vendor", ".git", ".svn", ".hg",
	"dist", "tmp", "temp",
	".idea", ".vscode", ".vs",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g., "*.tmp")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)
	MaxDepth       int      // 1 visits only the root's entries; 0 means unlimited
}

// Walk traverses a directory tree with configurable ignore patterns.
// The visitor function is called for each file and directory, the root
// included. Return filepath.SkipDir from visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	root := filepath.Clean(rootPath)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		depth := 0
		if path != root {
			if ignored(d, opts, ignoreDirs) {
				return skip(d)
			}
			depth = strings.Count(filepath.ToSlash(strings.TrimPrefix(path, root+string(filepath.Separator))), "/") + 1
			if opts.MaxDepth > 0 && depth > opts.MaxDepth {
				return skip(d)
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := visitor(path, info); err != nil {
			return err
		}
		if d.IsDir() && opts.MaxDepth > 0 && depth == opts.MaxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

func ignored(d fs.DirEntry, opts WalkOptions, ignoreDirs []string) bool {
	name := d.Name()
	if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}

	if d.IsDir() {
		for _, ignore := range ignoreDirs {
			if name == ignore {
				return true
			}
		}
		return false
	}

	for _, pattern := range opts.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func skip(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

// WalkWithDefaults walks a directory tree with default ignore patterns.
func WalkWithDefaults(rootPath string, visitor func(path string, info os.FileInfo) error) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}

// Find returns the files below rootPath whose name matches pattern, sorted.
func Find(rootPath, pattern string, opts WalkOptions) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}

	var files []string
	err := Walk(rootPath, opts, func(path string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match(pattern, info.Name()); matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
