package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query and maintain the document catalog",
	Long: `Commands for querying and maintaining the document catalog.

The collection file (data/documents.json) is the source of truth. The
SQLite cache only serves queries; it is rebuilt from the collection
automatically whenever the collection changes.`,
}
