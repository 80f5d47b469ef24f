package main

import (
	"fmt"
	"strings"

	"github.com/hollowaylabs/libris/internal/document"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	catalogSearchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	catalogCmd.AddCommand(catalogSearchCmd)
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search documents by keyword",
	Long: `Search documents by keyword.

Query Syntax:
  Plain text      - Searches title, summary, keywords, and preview text
  title:text      - Search title only
  keyword:text    - Search keywords only
  summary:text    - Search summaries only

Examples:
  libris catalog search "neural networks"
  libris catalog search "title:transformers"
  libris catalog search "keyword:statistics"`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenCatalog(root)
	defer db.Close()

	query := args[0]
	var docs []document.Document
	var err error

	// Check for field-specific searches
	if strings.HasPrefix(query, "title:") {
		value := strings.TrimPrefix(query, "title:")
		docs, err = db.SearchField("title", value, searchLimit)
	} else if strings.HasPrefix(query, "keyword:") {
		value := strings.TrimPrefix(query, "keyword:")
		docs, err = db.SearchField("keyword", value, searchLimit)
	} else if strings.HasPrefix(query, "summary:") {
		value := strings.TrimPrefix(query, "summary:")
		docs, err = db.SearchField("summary", value, searchLimit)
	} else {
		docs, err = db.Search(query, searchLimit)
	}

	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
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
