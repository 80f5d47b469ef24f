package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/document"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	catalogCmd.AddCommand(catalogCheckCmd)
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify collection integrity",
	Long: `Verify collection integrity.

Checks every document against the validation rules, reports duplicate
IDs, and verifies that each referenced file exists. Exits with code 3
when any issue is found.`,
	RunE: runCatalogCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status    string       `json:"status"`
	Documents int          `json:"documents"`
	Issues    []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Expected string `json:"expected,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	// Check the source of truth, not the cache
	docs, err := storage.ReadCollection(config.CollectionPath(root))
	if err != nil {
		exitWithError(ExitDataError, "reading collection: %v", err)
	}

	var issues []CheckIssue

	for _, id := range document.DetectDuplicateIDs(docs) {
		issues = append(issues, CheckIssue{
			Type: "duplicate_id",
			ID:   id,
		})
	}

	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			issues = append(issues, CheckIssue{
				Type:   "invalid_document",
				ID:     docs[i].ID,
				Detail: err.Error(),
			})
		}
	}

	// Referenced files must exist under the library root
	for _, doc := range docs {
		if doc.Filepath == "" {
			continue
		}
		fullPath := filepath.Join(root, doc.Filepath)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			issues = append(issues, CheckIssue{
				Type:     "missing_file",
				ID:       doc.ID,
				Expected: doc.Filepath,
			})
		}
	}

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}

	// Ensure issues is an empty array, not null
	if issues == nil {
		issues = []CheckIssue{}
	}

	if humanOutput {
		if len(issues) == 0 {
			fmt.Printf("Collection check: OK\n\n%d documents checked\n", len(docs))
		} else {
			fmt.Printf("Collection check: %d issues found\n\n", len(issues))
			for _, issue := range issues {
				switch issue.Type {
				case "duplicate_id":
					fmt.Printf("  [WARN] Duplicate ID %s\n\n", issue.ID)
				case "invalid_document":
					fmt.Printf("  [WARN] Invalid document %s\n", issue.ID)
					fmt.Printf("         %s\n\n", issue.Detail)
				case "missing_file":
					fmt.Printf("  [WARN] Missing file for %s\n", issue.ID)
					fmt.Printf("         Expected: %s\n\n", issue.Expected)
				}
			}
			fmt.Printf("%d documents checked\n", len(docs))
		}
	} else {
		outputJSON(CheckResult{
			Status:    status,
			Documents: len(docs),
			Issues:    issues,
		})
	}

	if len(issues) > 0 {
		os.Exit(ExitDataError)
	}

	return nil
}
