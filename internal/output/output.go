package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	writer      io.Writer = os.Stdout
	verboseMode bool
)

// SetVerbose enables or disables verbose output for debugging.
// This should be called by the CLI when the --verbose flag is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetWriter redirects all messages, e.g. to a command's output stream.
// A nil writer restores stdout.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	writer = w
}

func printStyled(style lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(writer, style.Render(msg))
}

// Success prints a success message with 🪶 and green color.
// Use this for completed operations.
//
// Example:
//
//	output.Success("Generated 14 schema file(s) in schema")
func Success(msg string) {
	printStyled(successStyle, "🪶 "+msg)
}

// Error prints an error message with ❌ and red color.
func Error(msg string) {
	printStyled(errorStyle, "❌ "+msg)
}

// Warning prints something that did not fail the run but deserves a look.
func Warning(msg string) {
	printStyled(warningStyle, "⚠️  "+msg)
}

// Info prints an informational message with ℹ️ and cyan color.
func Info(msg string) {
	printStyled(infoStyle, "ℹ️  "+msg)
}

// Step prints an indented step message in gray.
// Use this for sub-items such as the files of a run.
func Step(msg string) {
	printStyled(stepStyle, "   "+msg)
}

// Verbose prints a debug message with 🔍 only if verbose mode is enabled.
//
// Example:
//
//	output.Verbose("Loading definitions from data")
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()
	if enabled {
		printStyled(stepStyle, "🔍 "+msg)
	}
}
