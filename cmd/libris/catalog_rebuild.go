package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	catalogCmd.AddCommand(catalogRebuildCmd)
}

var catalogRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the catalog cache from the collection file",
	Long: `Rebuild the catalog cache from the collection file.

The cache rebuilds automatically when the collection changes; this
command forces a full rebuild, for example after deleting a corrupt
cache file.`,
	RunE: runCatalogRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string         `json:"status"`
	Documents  int            `json:"documents"`
	Categories map[string]int `json:"categories,omitempty"`
}

func runCatalogRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog cache: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromCollection(config.CollectionPath(root))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding catalog cache: %v", err)
	}

	categories, err := db.CategoryCounts()
	if err != nil {
		exitWithError(ExitError, "counting categories: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt catalog cache: %d documents\n", count)
		if len(categories) > 0 {
			names := make([]string, 0, len(categories))
			for name := range categories {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Println()
			for _, name := range names {
				fmt.Printf("  %-20s %d\n", name, categories[name])
			}
		}
	} else {
		outputJSON(RebuildResult{
			Status:     "rebuilt",
			Documents:  count,
			Categories: categories,
		})
	}

	return nil
}
