package main

import (
	"fmt"
	"os"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new library in the current directory",
	Long: `Initialize a new libris library in the current directory.

Creates:
  .libris/
  ├── config.json    # Library configuration
  └── cache/         # Catalog cache (disposable)
  data/              # Collection and knowledge graph files
  documents/         # Document files`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if err := config.Init(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized libris library in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
