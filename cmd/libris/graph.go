package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/embedding"
	"github.com/hollowaylabs/libris/internal/graph"
	"github.com/spf13/cobra"
)

var buildThreshold float64

func init() {
	graphBuildCmd.Flags().Float64Var(&buildThreshold, "threshold", graph.DefaultThreshold, "Minimum similarity for a link (overrides config)")
	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphCheckCmd)
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and validate the knowledge graph",
	Long: `Commands for the similarity knowledge graph.

The graph document lives next to the collection in data/. Building
reads the embeddings section, recomputes topic clusters and similarity
links, and writes the document back atomically.`,
}

var graphBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild topic clusters and similarity links",
	Long: `Rebuild topic clusters and similarity links from the stored
embeddings.

Two documents are linked when the cosine similarity of their embeddings
is strictly above the threshold. The threshold comes from the library
config unless --threshold is given.`,
	RunE: runGraphBuild,
}

// GraphBuildResult is the response for the graph build command.
type GraphBuildResult struct {
	Status    string  `json:"status"`
	Documents int     `json:"documents"`
	Topics    int     `json:"topics"`
	Links     int     `json:"links"`
	Threshold float64 `json:"threshold"`
	Path      string  `json:"path"`
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)

	graphPath := config.GraphPath(root)
	set, err := embedding.LoadSet(graphPath)
	if err != nil {
		exitWithError(ExitDataError, "loading embeddings: %v", err)
	}

	threshold := cfg.ThresholdOr(graph.DefaultThreshold)
	if cmd.Flags().Changed("threshold") {
		threshold = buildThreshold
	}
	if threshold < 0 || threshold > 1 {
		exitWithError(ExitError, "threshold must be between 0 and 1, got %v", threshold)
	}

	g := graph.Build(set, threshold)
	if err := graph.Save(g, graphPath); err != nil {
		exitWithError(ExitError, "saving graph: %v", err)
	}

	if humanOutput {
		fmt.Printf("Built knowledge graph: %d documents, %d topics, %d links\n",
			g.Metadata.TotalDocuments, g.Metadata.TotalTopics, g.Metadata.TotalLinks)
		fmt.Printf("Threshold: %.2f\n", threshold)
		fmt.Printf("Saved to %s\n", graphPath)
	} else {
		outputJSON(GraphBuildResult{
			Status:    "built",
			Documents: g.Metadata.TotalDocuments,
			Topics:    g.Metadata.TotalTopics,
			Links:     g.Metadata.TotalLinks,
			Threshold: threshold,
			Path:      graphPath,
		})
	}

	return nil
}

var graphCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the graph document",
	Long: `Validate the structural invariants of the graph document: links
reference known documents, similarities are in range, and each pair
appears at most once. Exits with code 3 when any problem is found.`,
	RunE: runGraphCheck,
}

// GraphCheckResult is the response for the graph check command.
type GraphCheckResult struct {
	Status   string   `json:"status"`
	Links    int      `json:"links"`
	Clusters int      `json:"clusters"`
	Problems []string `json:"problems"`
}

func runGraphCheck(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()

	g, err := graph.Load(config.GraphPath(root))
	if err != nil {
		if errors.Is(err, graph.ErrGraphNotFound) {
			exitWithError(ExitDataError, "no knowledge graph found\n\nRun 'libris graph build' first")
		}
		exitWithError(ExitDataError, "loading graph: %v", err)
	}

	problems := g.Check()

	status := "ok"
	if len(problems) > 0 {
		status = "issues"
	}
	if problems == nil {
		problems = []string{}
	}

	if humanOutput {
		if len(problems) == 0 {
			fmt.Printf("Graph check: OK\n\n%d links, %d clusters\n", len(g.Links), len(g.Clusters))
		} else {
			fmt.Printf("Graph check: %d problems found\n\n", len(problems))
			for _, p := range problems {
				fmt.Printf("  [WARN] %s\n", p)
			}
			fmt.Printf("\n%d links, %d clusters\n", len(g.Links), len(g.Clusters))
		}
	} else {
		outputJSON(GraphCheckResult{
			Status:   status,
			Links:    len(g.Links),
			Clusters: len(g.Clusters),
			Problems: problems,
		})
	}

	if len(problems) > 0 {
		os.Exit(ExitDataError)
	}

	return nil
}
