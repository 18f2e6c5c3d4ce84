package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrOutOfDate is returned in check mode when files on disk differ from
// what would be generated.
var ErrOutOfDate = errors.New("generated files are out of date")

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Check  bool      // Compare with disk and print diffs, write nothing
	Writer io.Writer // Where to write output (defaults to os.Stdout)
}

// Execute runs operations as a single transaction.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.Check {
		return check(ops, opts.Writer)
	}

	if opts.DryRun {
		for _, op := range ops {
			if err := op.Validate(ctx); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
		}
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	tx := NewTransaction()
	tx.Add(ops...)
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	for _, op := range ops {
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}
	return nil
}

// Pending returns the operations that would change the disk.
func Pending(ops []Operation) ([]Operation, error) {
	var pending []Operation
	for _, op := range ops {
		switch op := op.(type) {
		case *WriteFileOp:
			changed, err := op.Changed()
			if err != nil {
				return nil, err
			}
			if changed {
				pending = append(pending, op)
			}
		case *RemoveFileOp:
			if _, err := os.Stat(op.Path); err == nil {
				pending = append(pending, op)
			}
		default:
			pending = append(pending, op)
		}
	}
	return pending, nil
}

func check(ops []Operation, w io.Writer) error {
	pending, err := Pending(ops)
	if err != nil {
		return err
	}

	for _, op := range pending {
		write, ok := op.(*WriteFileOp)
		if !ok {
			fmt.Fprintf(w, "✗ %s\n", op.Description())
			continue
		}

		existing, err := os.ReadFile(write.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Fprintf(w, "✗ %s\n", write.Description())
		fmt.Fprint(w, GenerateDiffDefault(write.Path, write.Path, existing, write.Content))
	}

	if len(pending) > 0 {
		return fmt.Errorf("%w: %d file(s) would change", ErrOutOfDate, len(pending))
	}
	return nil
}
