package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Operation represents a file system change that can be validated and executed.
//
// Validate checks if the operation would succeed without touching the disk.
// Execute performs the change and should only be called after Validate succeeds.
// Target names the affected file so a failed commit can restore it.
// Description returns a human-readable line for output, e.g.
// "Write schema/brand.schema.json (412 bytes)".
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context) error
	Target() string
	Description() string
}

// WriteFileOp creates or replaces a generated file.
//
// Generated files are owned by the generator, so existing files are
// overwritten. Empty content is allowed, nil content is not.
type WriteFileOp struct {
	Path    string      // File path to write
	Content []byte      // File content (can be empty, must not be nil)
	Mode    fs.FileMode // File permissions (e.g., 0644)
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	if info, err := os.Stat(op.Path); err == nil && info.IsDir() {
		return fmt.Errorf("cannot write %s: is a directory", op.Path)
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(op.Path, op.Content, op.mode())
}

func (op *WriteFileOp) Target() string { return op.Path }

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}

// Changed reports whether executing op would alter the file on disk.
func (op *WriteFileOp) Changed() (bool, error) {
	existing, err := os.ReadFile(op.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return string(existing) != string(op.Content), nil
}

func (op *WriteFileOp) mode() fs.FileMode {
	if op.Mode == 0 {
		return 0644
	}
	return op.Mode
}

// RemoveFileOp deletes a file left over from an earlier run.
type RemoveFileOp struct {
	Path string
}

func (op *RemoveFileOp) Validate(ctx context.Context) error {
	info, err := os.Stat(op.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to remove directory %s", op.Path)
	}
	return nil
}

func (op *RemoveFileOp) Execute(ctx context.Context) error {
	if err := os.Remove(op.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (op *RemoveFileOp) Target() string { return op.Path }

func (op *RemoveFileOp) Description() string {
	return fmt.Sprintf("Remove %s", op.Path)
}

// StaleFiles lists files in dir matching pattern that are not in keep.
// A missing dir has no stale files.
func StaleFiles(dir, pattern string, keep []string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(keep))
	for _, path := range keep {
		wanted[filepath.Clean(path)] = true
	}

	var stale []string
	for _, path := range matches {
		if !wanted[filepath.Clean(path)] {
			stale = append(stale, path)
		}
	}
	sort.Strings(stale)
	return stale, nil
}
