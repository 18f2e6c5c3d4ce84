package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/generators/docs"
	"github.com/simonhull/firebird-suite/quill/internal/output"
)

// DocsCmd creates the 'docs' command rendering the documentation pages
func DocsCmd(e *env) *cobra.Command {
	var html, noPlantUML, dryRun bool

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate the Markdown documentation",
		Long: `Render the documentation pages from docs.source_dir into docs.out_dir.

Pages are templates that pull class documentation, enum tables and PlantUML
diagrams from the definitions. Every enum and entity must appear in the
docs, otherwise the run fails.

Diagrams are rendered to SVG with PlantUML, which needs java. The jar is
downloaded into docs.build_dir on first use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := e.catalog()
			if err != nil {
				return err
			}

			cfg := e.cfg
			gen := docs.New(catalog, docs.Options{
				SourceDir: cfg.Path(cfg.Docs.SourceDir),
				OutDir:    cfg.Path(cfg.Docs.OutDir),
				Files:     cfg.Docs.Files,
				Projects:  cfg.Projects(),
				HTML:      html || cfg.Docs.HTML,
				Clean:     cfg.Docs.Clean,
				Repo:      cfg.Repo,
				Logger:    e.log,
			})

			out, err := gen.Generate()
			if err != nil {
				return err
			}

			err = generator.Execute(cmd.Context(), out.Operations, generator.ExecuteOptions{
				DryRun: dryRun,
				Writer: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if dryRun {
				output.Info(fmt.Sprintf("Would render %d diagram(s)", len(out.Diagrams)))
				return nil
			}

			if noPlantUML || !cfg.Docs.PlantUML.Enabled {
				output.Verbose("Skipping diagram rendering")
			} else {
				jar := cfg.JarPath()
				if err := docs.EnsureJar(cmd.Context(), nil, jar, cfg.Docs.PlantUML.URL); err != nil {
					return err
				}
				renderer := docs.NewPlantUML(docs.PlantUMLOptions{
					Java:    cfg.Docs.PlantUML.Java,
					Jar:     jar,
					Stdout:  cmd.OutOrStdout(),
					Stderr:  cmd.ErrOrStderr(),
					Spinner: term.IsTerminal(int(os.Stdout.Fd())),
				})
				if err := gen.RenderDiagrams(cmd.Context(), renderer, out); err != nil {
					return err
				}
			}

			output.Success(fmt.Sprintf("Generated documentation in %s", cfg.Path(cfg.Docs.OutDir)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Also write an HTML rendering of every page")
	cmd.Flags().BoolVar(&noPlantUML, "no-plantuml", false, "Write PlantUML sources without rendering them")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing files")

	return cmd
}
