package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/quill/internal/output"
	"github.com/simonhull/firebird-suite/quill/internal/validate"
)

// ValidateCmd creates the 'validate' command checking example documents
func ValidateCmd(e *env) *cobra.Command {
	var schemaDir, examplesDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate example documents against the generated schemas",
		Long: `Validate every <name>.yaml in the examples directory against
<name>.schema.json in the schema directory.

Run 'quill schema' first so the schemas are current.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas := pick(schemaDir, e.cfg.Path(e.cfg.Schema.OutDir))
			examples := pick(examplesDir, e.cfg.Path(e.cfg.Validate.ExamplesDir))

			h, err := validate.New(schemas, e.log)
			if err != nil {
				return err
			}
			results, err := h.ValidateDir(examples)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				output.Warning("No examples found in " + examples)
				return nil
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					output.Error(fmt.Sprintf("%s: %v", r.Example, r.Err))
					continue
				}
				output.Verbose(fmt.Sprintf("%s matches %s", r.Example, r.Schema))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d example(s) failed validation", failed, len(results))
			}

			output.Success(fmt.Sprintf("%d example(s) valid", len(results)))
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaDir, "schemas", "", "schema directory (default schema.out_dir)")
	cmd.Flags().StringVar(&examplesDir, "examples", "", "examples directory (default validate.examples_dir)")

	return cmd
}
