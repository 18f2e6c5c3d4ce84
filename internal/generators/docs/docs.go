// Package docs renders the Markdown documentation of the material database.
//
// Pages are Go templates under <source>/markdown. They call back into the
// generator to emit class documentation, enum tables and PlantUML diagrams
// built from the definition files. Every definition must show up in the
// generated docs: a run fails if an enum has no table, or an entity has no
// class documentation or no diagram block.
package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/track"
)

// ErrUnknownCategory is returned when a tag names a category that does not exist.
var ErrUnknownCategory = errors.New("unknown tag category")

// Kinds of generated documentation, tracked per definition.
const (
	kindTable    track.Kind = "enum table"
	kindDiagram  track.Kind = "plantuml entity"
	kindClassDoc track.Kind = "class documentation"
)

// ProjectTag is a project a definition can belong to, keyed by its flag.
type ProjectTag struct {
	Key         string // entity/field flag, e.g. "in_opt_db"
	Stereotype  string
	Shorthand   string
	Description string
}

// DefaultProjects are the projects of the material database.
var DefaultProjects = []ProjectTag{
	{Key: "in_opt_db", Stereotype: "DB", Shorthand: "DB", Description: "In the database"},
	{Key: "in_opt", Stereotype: "OPT", Shorthand: "OPT", Description: "In OpenPrintTag"},
}

// DefaultFiles are the pages rendered when none are configured.
var DefaultFiles = []string{
	"_navbar",
	"README",
	"brands",
	"materials",
	"material_tags",
	"material_types",
	"material_certifications",
	"packaging",
	"uuid",
}

// Options configures a documentation run.
type Options struct {
	SourceDir string // holds markdown/, plantuml/ and an optional index.html
	OutDir    string
	Files     []string // page names without .md
	Projects  []ProjectTag
	HTML      bool // also write an .html rendering of every page
	Clean     bool // remove generated files of earlier runs

	// Repo is the repository URL used in provenance footers. SourceLink
	// and DataLink are the repo-relative locations of the docs sources and
	// the data directory.
	Repo       string
	SourceLink string
	DataLink   string

	Logger logger.Logger
}

// Output is what a run produced.
type Output struct {
	Operations []generator.Operation
	Diagrams   []string // PlantUML sources to render after the operations ran
}

// Generator renders documentation pages from a catalog.
type Generator struct {
	catalog *schema.Catalog
	opts    Options
	log     logger.Logger
}

// New creates a documentation generator, filling in defaults.
func New(catalog *schema.Catalog, opts Options) *Generator {
	if len(opts.Files) == 0 {
		opts.Files = DefaultFiles
	}
	if opts.Projects == nil {
		opts.Projects = DefaultProjects
	}
	if opts.SourceLink == "" {
		opts.SourceLink = "docs_src"
	}
	if opts.DataLink == "" {
		opts.DataLink = "data"
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Generator{catalog: catalog, opts: opts, log: log}
}

// Generate renders every page and returns the file operations. Nothing is
// written; diagrams are only collected.
func (g *Generator) Generate() (*Output, error) {
	r := newRun(g)

	for _, file := range g.opts.Files {
		if err := r.page(file); err != nil {
			return nil, err
		}
	}

	if err := r.copyIndex(); err != nil {
		return nil, err
	}

	if err := r.checkConsumed(); err != nil {
		return nil, err
	}

	if g.opts.Clean {
		if err := r.removeStale(); err != nil {
			return nil, err
		}
	}

	return &Output{Operations: r.ops, Diagrams: r.diagrams}, nil
}

// RenderDiagrams renders the collected PlantUML sources into the output
// directory. A nil renderer leaves the sources as they are.
func (g *Generator) RenderDiagrams(ctx context.Context, renderer DiagramRenderer, out *Output) error {
	if renderer == nil || len(out.Diagrams) == 0 {
		return nil
	}
	g.log.Info("Rendering diagrams", logger.F("count", len(out.Diagrams)))
	return renderer.Render(ctx, g.opts.OutDir, out.Diagrams)
}

// run is the state of one Generate call.
type run struct {
	g        *Generator
	renderer *generator.Renderer
	tracker  *track.Tracker

	diagram string // document of the PlantUML template being rendered
	common  *string

	ops      []generator.Operation
	written  []string
	diagrams []string
}

func newRun(g *Generator) *run {
	r := &run{g: g, tracker: track.New()}
	r.renderer = generator.NewRenderer(r.funcs())
	return r
}

func (r *run) page(file string) error {
	r.g.log.Info("Generating "+file+".md", logger.F("page", file))

	src := filepath.Join(r.g.opts.SourceDir, "markdown", file+".md")
	content, err := r.renderer.RenderFile(src, nil)
	if err != nil {
		return fmt.Errorf("generating %s.md: %w", file, err)
	}
	r.write(file+".md", content)

	if r.g.opts.HTML {
		page, err := RenderHTML(content)
		if err != nil {
			return fmt.Errorf("generating %s.html: %w", file, err)
		}
		r.write(file+".html", page)
	}
	return nil
}

func (r *run) write(name string, content []byte) string {
	path := filepath.Join(r.g.opts.OutDir, name)
	r.ops = append(r.ops, &generator.WriteFileOp{Path: path, Content: content, Mode: 0644})
	r.written = append(r.written, path)
	return path
}

// copyIndex ships the docsify entry page along with the generated pages.
func (r *run) copyIndex() error {
	content, err := os.ReadFile(filepath.Join(r.g.opts.SourceDir, "index.html"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index.html: %w", err)
	}
	r.write("index.html", content)
	return nil
}

func (r *run) checkConsumed() error {
	var enums, entities []string
	for _, enum := range r.g.catalog.Enums() {
		enums = append(enums, enum.Name)
	}
	for _, entity := range r.g.catalog.Entities() {
		entities = append(entities, qualified(entity))
	}

	return errors.Join(
		r.tracker.Check(kindTable, enums),
		r.tracker.Check(kindDiagram, entities),
		r.tracker.Check(kindClassDoc, entities),
	)
}

// removeStale drops generated files left over from pages or diagrams that
// no longer exist.
func (r *run) removeStale() error {
	keep := append([]string(nil), r.written...)
	for _, source := range r.diagrams {
		keep = append(keep, strings.TrimSuffix(source, filepath.Ext(source))+".svg")
	}

	for _, pattern := range []string{"*.md", "*.html", "*.plantuml", "*.svg"} {
		stale, err := generator.StaleFiles(r.g.opts.OutDir, pattern, keep)
		if err != nil {
			return err
		}
		for _, path := range stale {
			r.ops = append(r.ops, &generator.RemoveFileOp{Path: path})
		}
	}
	return nil
}

func qualified(e *schema.Entity) string {
	return e.Document() + "/" + e.Name
}

func yamlName(name string) string {
	return strings.TrimSuffix(name, ".yaml") + ".yaml"
}
