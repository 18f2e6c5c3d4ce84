package main

import (
	"os"

	"github.com/simonhull/firebird-suite/quill/internal/commands"
	"github.com/simonhull/firebird-suite/quill/internal/output"
)

func main() {
	if err := commands.RootCmd().Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
