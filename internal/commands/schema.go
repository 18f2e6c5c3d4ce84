package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/quill/internal/emit"
	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/generators/optschema"
	"github.com/simonhull/firebird-suite/quill/internal/output"
)

// SchemaCmd creates the 'schema' command generating the JSON Schema set
func SchemaCmd(e *env) *cobra.Command {
	var variantName, outDir string
	var check, dryRun bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate the JSON Schemas of a variant",
		Long: `Generate one <name>.schema.json per schema in the plan.

Variants:
  opt_db  - database documents (references as uuid/slug unions)
  opt     - OpenPrintTag payloads (references by UUID)

Variants can be adjusted or added under schema.variants in quill.yml.

Examples:
  quill schema
  quill schema --variant opt --out build/opt
  quill schema --check     # fail when the files on disk are stale`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && dryRun {
				return fmt.Errorf("--check and --dry-run are mutually exclusive")
			}

			catalog, err := e.catalog()
			if err != nil {
				return err
			}
			variant, err := e.cfg.Variant(variantName)
			if err != nil {
				return err
			}
			output.Verbose(fmt.Sprintf("Variant %s: filter %s, references %s", variant.Name, variant.Target.Filter, variant.References))

			em, err := optschema.New(catalog, optschema.Options{
				Variant: variant,
				Emit:    emit.Options{BaseURI: e.cfg.Schema.BaseURI, Draft: e.cfg.Schema.Draft},
				Logger:  e.log,
			}).Generate()
			if err != nil {
				return err
			}

			dir := pick(outDir, e.cfg.Path(e.cfg.Schema.OutDir))
			ops, err := em.Operations(dir, e.cfg.Schema.Clean)
			if err != nil {
				return err
			}

			err = generator.Execute(cmd.Context(), ops, generator.ExecuteOptions{
				DryRun: dryRun,
				Check:  check,
				Writer: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			switch {
			case check:
				output.Success(fmt.Sprintf("%d schema file(s) in %s are up to date", len(em.Documents()), dir))
			case dryRun:
				output.Info(fmt.Sprintf("Would generate %d schema file(s) in %s", len(em.Documents()), dir))
			default:
				output.Success(fmt.Sprintf("Generated %d schema file(s) in %s", len(em.Documents()), dir))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variantName, "variant", "", fmt.Sprintf("schema variant %v (default from config)", optschema.PresetNames()))
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (overrides schema.out_dir)")
	cmd.Flags().BoolVar(&check, "check", false, "Compare with the files on disk and fail if they differ")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without writing files")

	return cmd
}
