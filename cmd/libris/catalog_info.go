package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	catalogCmd.AddCommand(catalogInfoCmd)
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show full details for one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogInfo,
}

func runCatalogInfo(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenCatalog(root)
	defer db.Close()

	doc, err := db.GetByID(args[0])
	if err != nil {
		exitWithError(ExitError, "reading document: %v", err)
	}
	if doc == nil {
		exitWithError(ExitError, "document not found: %s", args[0])
	}

	if humanOutput {
		fmt.Printf("ID:         %s\n", doc.ID)
		fmt.Printf("Title:      %s\n", doc.Title)
		if len(doc.Authors) > 0 {
			fmt.Printf("Authors:    %s\n", strings.Join(doc.Authors, ", "))
		}
		fmt.Printf("File:       %s (%s)\n", doc.Filepath, formatBytes(doc.FileSize))
		fmt.Printf("Uploaded:   %s\n", doc.UploadDate)
		if doc.Category != "" {
			fmt.Printf("Category:   %s\n", doc.Category)
		}
		if doc.Difficulty != "" {
			fmt.Printf("Difficulty: %s\n", doc.Difficulty)
		}
		if len(doc.Keywords) > 0 {
			fmt.Printf("Keywords:   %s\n", strings.Join(doc.Keywords, ", "))
		}
		if doc.Summary != "" {
			fmt.Printf("\n%s\n", doc.Summary)
		}
	} else {
		outputJSON(doc)
	}

	return nil
}
