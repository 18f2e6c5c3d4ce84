package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/quill"
	"github.com/simonhull/firebird-suite/quill/internal/config"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
	"github.com/simonhull/firebird-suite/quill/internal/output"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// env is the state shared by every subcommand, filled in before it runs.
type env struct {
	configPath string
	dataDir    string
	verbose    bool

	cfg *config.Config
	log logger.Logger
}

// RootCmd creates the quill command with every subcommand attached.
func RootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:   "quill",
		Short: "Schema and documentation generator for the material database",
		Long: `Quill reads the entity and enum definitions of the material database and
generates everything derived from them:

• JSON Schemas for the database and for OpenPrintTag
• Markdown documentation with tables and PlantUML diagrams
• Validation of example documents against the generated schemas

Configuration is read from quill.yml when present.`,
		Version:       quill.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default ./quill.yml)")
	cmd.PersistentFlags().StringVar(&e.dataDir, "data", "", "definitions directory (overrides data_dir)")
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable verbose output for debugging")

	cmd.AddCommand(SchemaCmd(e))
	cmd.AddCommand(DocsCmd(e))
	cmd.AddCommand(ValidateCmd(e))
	cmd.AddCommand(MetaCmd(e))

	return cmd
}

func (e *env) load(logOut io.Writer) error {
	output.SetVerbose(e.verbose)

	level := logger.LevelInfo
	if e.verbose {
		level = logger.LevelDebug
	}
	e.log = logger.NewLogger(level, logOut)

	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	if cfg.File != "" {
		output.Verbose("Using config " + cfg.File)
	}
	return nil
}

// dataPath is the definitions directory, --data taking precedence.
func (e *env) dataPath() string {
	if e.dataDir != "" {
		return e.dataDir
	}
	return e.cfg.Path(e.cfg.DataDir)
}

func (e *env) catalog() (*schema.Catalog, error) {
	dir := e.dataPath()
	output.Verbose("Loading definitions from " + dir)

	catalog, err := schema.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	return catalog, nil
}

// pick returns flag unless it is empty.
func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
