package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/simonhull/firebird-suite/quill/internal/exec"
)

// PlantUML release used when none is configured.
const (
	DefaultJarName = "plantuml-mit-1.2025.1.jar"
	DefaultJarURL  = "https://github.com/plantuml/plantuml/releases/download/v1.2025.1/" + DefaultJarName
)

// DiagramRenderer turns PlantUML sources into SVG images in outDir.
type DiagramRenderer interface {
	Render(ctx context.Context, outDir string, sources []string) error
}

// PlantUMLOptions configures the java-based renderer.
type PlantUMLOptions struct {
	Java    string // java binary, default "java"
	Jar     string // path of the PlantUML jar
	Stdout  io.Writer
	Stderr  io.Writer
	Spinner bool
	Timeout time.Duration
}

// PlantUML renders diagrams with `java -jar plantuml.jar -tsvg`.
type PlantUML struct {
	java     string
	jar      string
	spinner  bool
	streams  []*exec.LineWriter
	executor *exec.Executor
}

// NewPlantUML creates a renderer. The jar must exist when Render is called.
// Without a spinner, PlantUML's own output is passed through with a prefix.
func NewPlantUML(opts PlantUMLOptions) *PlantUML {
	java := opts.Java
	if java == "" {
		java = "java"
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	p := &PlantUML{java: java, jar: opts.Jar, spinner: opts.Spinner}
	if !opts.Spinner {
		out := exec.NewLineWriter(stdout, "plantuml", exec.Stdout)
		errOut := exec.NewLineWriter(stderr, "plantuml", exec.Stderr)
		p.streams = []*exec.LineWriter{out, errOut}
		stdout, stderr = out, errOut
	}
	p.executor = exec.NewExecutor(&exec.Options{
		Stdout:  stdout,
		Stderr:  stderr,
		Timeout: opts.Timeout,
	})
	return p
}

// Render runs PlantUML once over every source.
func (p *PlantUML) Render(ctx context.Context, outDir string, sources []string) error {
	if len(sources) == 0 {
		return nil
	}
	if _, err := os.Stat(p.jar); err != nil {
		return fmt.Errorf("plantuml jar: %w", err)
	}

	args := append([]string{"-jar", p.jar, "-o", outDir, "-tsvg"}, sources...)
	cmd := exec.NewCommand(p.executor, p.java).WithArgs(args...)
	if p.spinner {
		cmd.WithSpinner(fmt.Sprintf("Rendering %d diagram(s)", len(sources)))
	}
	err := cmd.Run(ctx)
	for _, stream := range p.streams {
		_ = stream.Flush()
	}
	if err != nil {
		return fmt.Errorf("rendering diagrams: %w", err)
	}
	return nil
}

// EnsureJar downloads url to path unless path already exists. The file is
// written under a temporary name and renamed into place when complete.
func EnsureJar(ctx context.Context, client *http.Client, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if url == "" {
		return fmt.Errorf("plantuml jar %s not found and no download URL configured", path)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("downloading plantuml: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading plantuml: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading plantuml: %s returned %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".plantuml-*.jar")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("downloading plantuml: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
