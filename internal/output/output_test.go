package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput collects everything printed by f
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	var buf bytes.Buffer
	SetWriter(&buf)
	t.Cleanup(func() { SetWriter(nil) })

	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(string)
		mark  string
	}{
		{"success", Success, "🪶"},
		{"error", Error, "❌"},
		{"warning", Warning, "⚠️"},
		{"info", Info, "ℹ️"},
		{"step", Step, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t, func() { tt.print("material.schema.json") })
			assert.Contains(t, out, tt.mark)
			assert.Contains(t, out, "material.schema.json")
			assert.Equal(t, byte('\n'), out[len(out)-1])
		})
	}
}

func TestVerbose(t *testing.T) {
	out := captureOutput(t, func() { Verbose("Loading definitions") })
	assert.Empty(t, out, "verbose output is hidden by default")

	SetVerbose(true)
	t.Cleanup(func() { SetVerbose(false) })

	out = captureOutput(t, func() { Verbose("Loading definitions") })
	assert.Contains(t, out, "🔍")
	assert.Contains(t, out, "Loading definitions")
}

func TestSetVerbose(t *testing.T) {
	SetVerbose(true)
	assert.True(t, verboseMode)

	SetVerbose(false)
	assert.False(t, verboseMode)
}
