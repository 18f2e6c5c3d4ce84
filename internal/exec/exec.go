package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotInstalled is returned when the command binary cannot be found.
var ErrNotInstalled = errors.New("command not installed")

// CommandFunc builds the *exec.Cmd for a command line.
type CommandFunc func(name string, args ...string) *exec.Cmd

// Executor runs external commands
type Executor struct {
	stdout  io.Writer
	stderr  io.Writer
	env     []string
	dir     string
	timeout time.Duration

	// For mocking in tests
	commandFunc CommandFunc
}

// Options configures command execution
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Env     []string      // Additional environment variables
	Dir     string        // Working directory
	Timeout time.Duration // Zero means no limit beyond the context
}

// NewExecutor creates an executor writing to stdout/stderr unless told otherwise
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		timeout:     opts.Timeout,
		commandFunc: exec.Command,
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// Run executes a command and waits for it, killing it when ctx ends
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := e.commandFunc(name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		if isCommandNotFound(err) {
			return notInstalled(name, err)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-errCh
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case err := <-errCh:
		if err != nil {
			if isCommandNotFound(err) {
				return notInstalled(name, err)
			}
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return nil
	}
}

// RunWithSpinner runs a command behind a progress spinner. The command's
// own output is discarded.
func (e *Executor) RunWithSpinner(ctx context.Context, message string, name string, args ...string) error {
	quiet := &Executor{
		stdout:      io.Discard,
		stderr:      io.Discard,
		env:         e.env,
		dir:         e.dir,
		timeout:     e.timeout,
		commandFunc: e.commandFunc,
	}

	done := make(chan error, 1)
	go func() {
		done <- quiet.Run(ctx, name, args...)
	}()

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = p.Run()
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})

	select {
	case <-finished:
	case <-time.After(200 * time.Millisecond):
		p.Quit()
		<-finished
	}
	return err
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

func isCommandNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "command not found")
}

func notInstalled(name string, err error) error {
	return fmt.Errorf("%w: %s: %v\n💡 Install '%s' and make sure it is on your PATH", ErrNotInstalled, name, err, name)
}

// Command is a fluent builder around an Executor
type Command struct {
	executor   *Executor
	command    string
	args       []string
	env        []string
	dir        string
	spinnerMsg string
}

// NewCommand starts building a command run by executor
func NewCommand(executor *Executor, command string) *Command {
	return &Command{
		executor: executor,
		command:  command,
	}
}

// WithArgs appends arguments
func (c *Command) WithArgs(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// WithEnv appends environment variables
func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

// WithDir sets the working directory
func (c *Command) WithDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithSpinner shows a spinner with message while the command runs
func (c *Command) WithSpinner(message string) *Command {
	c.spinnerMsg = message
	return c
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	e := *c.executor
	e.env = append(append([]string(nil), c.executor.env...), c.env...)
	if c.dir != "" {
		e.dir = c.dir
	}

	if c.spinnerMsg != "" {
		return e.RunWithSpinner(ctx, c.spinnerMsg, c.command, c.args...)
	}
	return e.Run(ctx, c.command, c.args...)
}

// String returns the command line for logs
func (c *Command) String() string {
	return strings.Join(append([]string{c.command}, c.args...), " ")
}
