package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixtureDir returns the absolute path of a directory under this package's
// testdata, e.g. FixtureDir("data").
func FixtureDir(elem ...string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("testutil: cannot locate fixtures")
	}
	return filepath.Join(append([]string{filepath.Dir(file), "testdata"}, elem...)...)
}

// TestProject is a temporary data repository for testing
type TestProject struct {
	Root string
	t    *testing.T
}

// NewTestProject creates an empty project directory
func NewTestProject(t *testing.T) *TestProject {
	t.Helper()

	return &TestProject{
		Root: t.TempDir(),
		t:    t,
	}
}

// NewFixtureProject creates a project holding a copy of the fixture data,
// examples and docs sources.
func NewFixtureProject(t *testing.T) *TestProject {
	t.Helper()

	p := NewTestProject(t)
	p.CopyFixture("data", "data")
	p.CopyFixture("examples", "examples")
	p.CopyFixture("docs", "docs")
	return p
}

// Path joins elem onto the project root
func (p *TestProject) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// CopyFixture copies testdata/<name> into the project at dest
func (p *TestProject) CopyFixture(name, dest string) {
	p.t.Helper()

	src := FixtureDir(name)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := p.Path(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0644)
	})
	if err != nil {
		p.t.Fatalf("copying fixture %s: %v", name, err)
	}
}

// WriteFile writes content to a project-relative path, creating parents
func (p *TestProject) WriteFile(path, content string) {
	p.t.Helper()

	full := p.Path(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		p.t.Fatalf("creating %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		p.t.Fatalf("writing %s: %v", path, err)
	}
}

// FileExists checks if a file exists in the project
func (p *TestProject) FileExists(path string) bool {
	p.t.Helper()

	_, err := os.Stat(p.Path(path))
	return err == nil
}

// ReadFile reads a file from the project
func (p *TestProject) ReadFile(path string) (string, error) {
	p.t.Helper()

	content, err := os.ReadFile(p.Path(path))
	return string(content), err
}
