package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Transaction represents a set of file operations that can be committed or rolled back
type Transaction struct {
	operations []Operation
	backups    []backup
	committed  bool
}

// backup is the state of a target before an operation touched it.
type backup struct {
	path    string
	content []byte
	mode    fs.FileMode
	existed bool
}

// NewTransaction creates a new file operation transaction
func NewTransaction() *Transaction {
	return &Transaction{
		operations: make([]Operation, 0),
	}
}

// Add stages operations (doesn't execute yet)
func (t *Transaction) Add(ops ...Operation) {
	t.operations = append(t.operations, ops...)
}

// AddFile stages a file write.
func (t *Transaction) AddFile(path string, content []byte, mode os.FileMode) {
	t.Add(&WriteFileOp{Path: path, Content: content, Mode: mode})
}

// Operations returns the staged operations in order.
func (t *Transaction) Operations() []Operation {
	return t.operations
}

// Commit validates every staged operation, then executes them in order.
// If any operation fails, files touched so far are restored to their
// previous content, or removed if they did not exist.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	for _, op := range t.operations {
		if err := op.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	t.backups = t.backups[:0]
	for _, op := range t.operations {
		if err := ctx.Err(); err != nil {
			t.restore()
			return err
		}

		b, err := snapshot(op.Target())
		if err != nil {
			t.restore()
			return fmt.Errorf("failed to read %s: %w", op.Target(), err)
		}
		t.backups = append(t.backups, b)

		if err := op.Execute(ctx); err != nil {
			t.restore()
			return fmt.Errorf("%s: %w", op.Description(), err)
		}
	}

	t.committed = true
	return nil
}

// Rollback restores touched files (for use in defer). It is a no-op after
// a successful commit.
func (t *Transaction) Rollback() {
	if !t.committed {
		t.restore()
	}
}

// restore undoes executed operations in reverse, best effort.
func (t *Transaction) restore() {
	for i := len(t.backups) - 1; i >= 0; i-- {
		b := t.backups[i]
		if b.existed {
			os.WriteFile(b.path, b.content, b.mode)
		} else {
			os.Remove(b.path)
		}
	}
	t.backups = t.backups[:0]
}

func snapshot(path string) (backup, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return backup{path: path}, nil
	}
	if err != nil {
		return backup{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return backup{}, err
	}
	return backup{path: path, content: content, mode: info.Mode().Perm(), existed: true}, nil
}
