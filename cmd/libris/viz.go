package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/graph"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/hollowaylabs/libris/internal/viz"
	"github.com/spf13/cobra"
)

var vizOutput string
var vizLayout string
var vizPin bool

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, or grid")
	vizCmd.Flags().BoolVar(&vizPin, "pin", false, "Precompute circle/grid positions instead of layouting in the browser")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate knowledge graph visualization",
	Long: `Generate an interactive HTML visualization of the knowledge graph.

Documents appear as circles colored by topic and sized by link count;
edges are weighted by similarity. Hover for summaries, click to
highlight a document's neighborhood.

Examples:
  # Generate HTML to stdout
  libris viz > graph.html

  # Generate to file
  libris viz --output graph.html

  # Use circular layout
  libris viz --layout circle --output graph.html

  # Deterministic positions computed ahead of time
  libris viz --layout grid --pin --output graph.html`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	g, err := graph.Load(config.GraphPath(root))
	if err != nil {
		if errors.Is(err, graph.ErrGraphNotFound) {
			exitWithError(ExitDataError, "no knowledge graph found\n\nRun 'libris graph build' first")
		}
		exitWithError(ExitDataError, "loading graph: %v", err)
	}

	docs, err := storage.ReadCollection(config.CollectionPath(root))
	if err != nil {
		exitWithError(ExitDataError, "reading collection: %v", err)
	}

	data := viz.BuildGraphData(g, docs)

	// Generate HTML (validates the layout internally)
	opts := viz.HTMLOptions{Layout: vizLayout}
	if vizPin {
		positions, err := viz.ComputePositions(data, vizLayout)
		if err != nil {
			return fmt.Errorf("computing positions: %w", err)
		}
		opts.Positions = positions
	}
	html, err := viz.GenerateHTML(data, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
	} else {
		if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if !humanOutput {
			fmt.Printf("{\"output\":\"%s\"}\n", vizOutput)
		} else {
			fmt.Printf("Visualization written to %s\n", vizOutput)
		}
	}

	return nil
}
