package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/quill/internal/generator"
	"github.com/simonhull/firebird-suite/quill/internal/output"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// MetaCmd creates the 'meta' command printing the JSON Schema of the
// definition files themselves
func MetaCmd(e *env) *cobra.Command {
	var outFile string
	var enum bool

	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Print the JSON Schema of definition documents",
		Long: `Print a JSON Schema describing entity documents such as materials.yaml,
or enum documents with --enum. Point your editor's YAML language server at
it for completion in the data directory.

Examples:
  quill meta > build/entities.schema.json
  quill meta --enum --out build/enums.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta := schema.MetaSchema()
			if enum {
				meta = schema.EnumMetaSchema()
			}

			content, err := json.MarshalIndent(meta, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding meta-schema: %w", err)
			}
			content = append(content, '\n')

			if outFile == "" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}

			op := &generator.WriteFileOp{Path: outFile, Content: content, Mode: 0644}
			if err := generator.Execute(cmd.Context(), []generator.Operation{op}, generator.ExecuteOptions{Writer: cmd.OutOrStdout()}); err != nil {
				return err
			}
			output.Success("Wrote " + outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&enum, "enum", false, "describe enum documents instead of entity documents")

	return cmd
}
