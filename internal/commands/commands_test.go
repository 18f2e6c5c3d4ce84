package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/quill/internal/generators/optschema"
	"github.com/simonhull/firebird-suite/quill/internal/output"
	"github.com/simonhull/firebird-suite/quill/internal/testing/testutil"
)

const testConfig = `repo: https://github.com/example/db
schema:
  base_uri: https://example.com/schema
docs:
  source_dir: docs
  out_dir: build/docs
`

// fixtureProject returns a project holding the fixture data and a config
// pointing at it.
func fixtureProject(t *testing.T) *testutil.TestProject {
	t.Helper()
	p := testutil.NewFixtureProject(t)
	p.WriteFile("quill.yml", testConfig)
	return p
}

// run executes quill with args and returns everything it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	output.SetWriter(&buf)
	t.Cleanup(func() { output.SetWriter(nil) })

	root := RootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestMeta(t *testing.T) {
	p := testutil.NewTestProject(t)

	out, err := run(t, "meta", "--config", p.Path("missing.yml"))
	require.Error(t, err, "an explicit config must exist")
	assert.Empty(t, out)

	p.WriteFile("quill.yml", "data_dir: data\n")
	out, err = run(t, "meta", "--config", p.Path("quill.yml"))
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, "Entity definition document", meta["title"])
}

func TestMetaEnumToFile(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("quill.yml", "data_dir: data\n")

	out, err := run(t, "meta", "--enum", "--out", p.Path("enum.schema.json"), "--config", p.Path("quill.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	content, err := p.ReadFile("enum.schema.json")
	require.NoError(t, err)
	assert.Contains(t, content, `"Enum definition document"`)
}

func TestSchemaUnknownVariant(t *testing.T) {
	p := fixtureProject(t)

	_, err := run(t, "schema", "--config", p.Path("quill.yml"), "--variant", "nope")
	assert.ErrorIs(t, err, optschema.ErrUnknownVariant)
}

func TestSchemaCheckAndDryRunConflict(t *testing.T) {
	p := fixtureProject(t)

	_, err := run(t, "schema", "--config", p.Path("quill.yml"), "--check", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestSchemaDryRun(t *testing.T) {
	p := fixtureProject(t)

	out, err := run(t, "schema", "--config", p.Path("quill.yml"), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[DRY RUN]")
	assert.Contains(t, out, "material.schema.json")
	assert.False(t, p.FileExists("schema/material.schema.json"))
}

func TestSchemaDataOverride(t *testing.T) {
	p := fixtureProject(t)

	_, err := run(t, "schema", "--config", p.Path("quill.yml"), "--data", p.Path("nowhere"))
	assert.Error(t, err)
}

func TestValidateWithoutExamples(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.WriteFile("quill.yml", "validate:\n  examples_dir: examples\n")
	p.WriteFile("examples/README.md", "no yaml here")

	out, err := run(t, "validate", "--config", p.Path("quill.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "No examples found")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "quill version")
}
