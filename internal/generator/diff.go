package generator

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"
)

// DiffOptions configures how diffs are generated and displayed.
// All fields are optional.
type DiffOptions struct {
	// ContextLines is the number of unchanged lines to show around changes.
	// Default: 3
	ContextLines int

	// TabWidth is the number of spaces each tab character expands to.
	// Default: 4
	TabWidth int

	// Width truncates long lines. Default: terminal width, or 80.
	Width int
}

// Lipgloss styles for terminal output
var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// GenerateDiffDefault uses default options (3 context lines).
func GenerateDiffDefault(oldPath, newPath string, old, newer []byte) string {
	return GenerateDiff(oldPath, newPath, old, newer, nil)
}

// GenerateDiff creates a styled unified diff. Identical inputs yield "".
func GenerateDiff(oldPath, newPath string, old, newer []byte, opts *DiffOptions) string {
	o := DiffOptions{ContextLines: 3, TabWidth: 4}
	if opts != nil {
		if opts.ContextLines > 0 {
			o.ContextLines = opts.ContextLines
		}
		if opts.TabWidth > 0 {
			o.TabWidth = opts.TabWidth
		}
		o.Width = opts.Width
	}
	if o.Width <= 0 {
		o.Width = getTerminalWidth()
	}

	if bytes.Equal(old, newer) {
		return ""
	}
	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(old)),
		B:        splitLines(string(newer)),
		FromFile: oldPath,
		ToFile:   newPath,
		Context:  o.ContextLines,
	})
	if err != nil || text == "" {
		return ""
	}

	var buf strings.Builder
	for i, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		buf.WriteString(styleLine(i, line, o))
		buf.WriteByte('\n')
	}
	return buf.String()
}

func styleLine(index int, line string, opts DiffOptions) string {
	// Leave room for the terminal's own margin.
	line = truncateLine(expandTabs(line, opts.TabWidth), opts.Width-10)

	switch {
	case index < 2:
		return headerStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	default:
		return line
	}
}

// isBinary checks if content appears to be binary (contains null bytes)
func isBinary(data []byte) bool {
	checkLen := len(data)
	if checkLen > 8192 {
		checkLen = 8192
	}
	return bytes.IndexByte(data[:checkLen], 0) != -1
}

// splitLines splits content into newline-terminated lines as difflib expects.
// A missing final newline is added so the last line compares equal.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// expandTabs replaces tabs with spaces
func expandTabs(s string, tabWidth int) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var buf strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			buf.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		buf.WriteRune(r)
		col++
	}
	return buf.String()
}

// truncateLine truncates a line if it's too long, adding "..." indicator
func truncateLine(s string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return "..."[:maxWidth]
	}
	runes := []rune(s)
	return string(runes[:maxWidth-3]) + "..."
}

// getTerminalWidth returns the terminal width, defaulting to 80 if unable to detect
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
