package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollowaylabs/libris/internal/extract"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Extract a text preview from a file",
	Long: `Extract a text preview and display title from a PDF, text, or
markdown file.

Works on any path; the file does not need to be part of a library.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

// PreviewResult is the response for the preview command.
type PreviewResult struct {
	File     string `json:"file"`
	Title    string `json:"title"`
	Preview  string `json:"preview"`
	FileSize int64  `json:"file_size"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}
	if info.IsDir() {
		exitWithError(ExitError, "%s is a directory", path)
	}

	title := extract.Title(path)
	if title == "" {
		title = extract.TitleFromFilename(filepath.Base(path))
	}

	result := PreviewResult{
		File:     path,
		Title:    title,
		Preview:  extract.Preview(path),
		FileSize: info.Size(),
	}

	if humanOutput {
		fmt.Printf("File:  %s (%s)\n", result.File, formatBytes(result.FileSize))
		fmt.Printf("Title: %s\n", result.Title)
		if result.Preview != "" {
			fmt.Printf("\n%s\n", result.Preview)
		}
	} else {
		outputJSON(result)
	}

	return nil
}
