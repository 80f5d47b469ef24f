package main

import (
	"fmt"

	"github.com/hollowaylabs/libris/internal/document"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listLimit      int
	listCategory   string
	listDifficulty string
)

func init() {
	catalogListCmd.Flags().IntVar(&listLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	catalogListCmd.Flags().StringVar(&listCategory, "category", "", "Only documents in this category")
	catalogListCmd.Flags().StringVar(&listDifficulty, "difficulty", "", "Only documents at this difficulty")
	catalogCmd.AddCommand(catalogListCmd)
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog documents",
	Long: `List catalog documents, ordered by ID.

Examples:
  libris catalog list
  libris catalog list --category "Machine Learning"
  libris catalog list --difficulty Beginner --limit 10`,
	RunE: runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenCatalog(root)
	defer db.Close()

	var docs []document.Document
	var err error
	if listCategory == "" && listDifficulty == "" {
		docs, err = db.ListAll(listLimit)
	} else {
		docs, err = db.SearchWithFilters(storage.SearchFilters{
			Category:   listCategory,
			Difficulty: listDifficulty,
		}, listLimit)
	}
	if err != nil {
		exitWithError(ExitError, "listing documents: %v", err)
	}

	// Empty result is not an error
	if docs == nil {
		docs = []document.Document{}
	}

	if humanOutput {
		if len(docs) == 0 {
			fmt.Println("No documents found")
		} else {
			fmt.Printf("Found %d documents:\n\n", len(docs))
			for i, doc := range docs {
				printDocSummary(i+1, doc)
			}
		}
	} else {
		outputJSON(docs)
	}

	return nil
}
