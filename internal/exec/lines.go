package exec

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Stream identifies which output of a command a LineWriter carries.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

var streamStyles = map[Stream]lipgloss.Style{
	Stdout: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Stderr: lipgloss.NewStyle().Foreground(lipgloss.Color("red")),
}

// LineWriter tags every complete line a command writes with "[tool] " and
// styles it by stream. Blank lines are dropped; a trailing partial line
// waits for Flush.
type LineWriter struct {
	mu    sync.Mutex
	out   io.Writer
	tag   string
	style lipgloss.Style
	buf   bytes.Buffer
}

// NewLineWriter creates a LineWriter for tool's stream, writing to out.
func NewLineWriter(out io.Writer, tool string, stream Stream) *LineWriter {
	return &LineWriter{
		out:   out,
		tag:   "[" + tool + "] ",
		style: streamStyles[stream],
	}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			return len(p), nil
		}
		line := string(w.buf.Next(i + 1))
		if err := w.emit(line); err != nil {
			return 0, err
		}
	}
}

// Flush writes the pending partial line, if any.
func (w *LineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := w.buf.String()
	w.buf.Reset()
	return w.emit(line)
}

func (w *LineWriter) emit(line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}
	_, err := fmt.Fprintln(w.out, w.style.Render(w.tag+line))
	return err
}
