package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hollowaylabs/libris/internal/document"
	"github.com/hollowaylabs/libris/internal/ollama"
	"github.com/spf13/cobra"
)

var askDoc string

func init() {
	askCmd.Flags().StringVar(&askDoc, "doc", "", "Document ID to use as context")
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the model a one-shot question",
	Long: `Ask the model a one-shot question using the resolved serving
configuration.

With --doc, the catalog entry for that document (title, summary,
preview text) is passed to the model as context.

Examples:
  libris ask "What is a transformer?"
  libris ask --doc attention-paper "Summarize the key contribution"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// AskResult is the response for the ask command.
type AskResult struct {
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Duration string `json:"duration"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	cfg := mustLoadConfig(root)
	env := resolveEnvironment(cfg)

	var docContext string
	if askDoc != "" {
		db := mustOpenCatalog(root)
		doc, err := db.GetByID(askDoc)
		db.Close()
		if err != nil {
			exitWithError(ExitError, "reading document: %v", err)
		}
		if doc == nil {
			exitWithError(ExitError, "document not found: %s", askDoc)
		}
		docContext = buildDocContext(doc)
	}

	ctx, cancel := context.WithTimeout(context.Background(), env.Performance.RequestTimeout)
	defer cancel()

	client := ollama.NewClientFromConfig(env)
	mustValidateOllama(ctx, client, true)

	session := ollama.NewSession(client, env.Chat.MaxHistory)

	start := time.Now()
	answer, err := session.Ask(ctx, args[0], docContext)
	if err != nil {
		switch {
		case errors.Is(err, ollama.ErrUnavailable):
			exitWithError(ExitOllamaError, "%v", err)
		case errors.Is(err, ollama.ErrModelNotFound):
			exitWithError(ExitModelNotFound, "%v", err)
		case errors.Is(err, context.DeadlineExceeded):
			exitWithError(ExitError, "request timed out after %s", env.Performance.RequestTimeout)
		default:
			exitWithError(ExitError, "asking: %v", err)
		}
	}
	elapsed := time.Since(start)

	if humanOutput {
		fmt.Println(answer)
		fmt.Printf("\n(%s, %s)\n", client.ModelName(), elapsed.Round(10*time.Millisecond))
	} else {
		outputJSON(AskResult{
			Answer:   answer,
			Model:    client.ModelName(),
			Duration: elapsed.Round(10 * time.Millisecond).String(),
		})
	}

	return nil
}

// buildDocContext assembles the context block passed to the model for
// a single document.
func buildDocContext(doc *document.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(doc.Authors, ", "))
	}
	if doc.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", doc.Category)
	}
	if doc.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", doc.Difficulty)
	}
	if len(doc.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(doc.Keywords, ", "))
	}
	if doc.Summary != "" {
		fmt.Fprintf(&b, "\nSummary: %s\n", doc.Summary)
	}
	if doc.ContentPreview != "" {
		fmt.Fprintf(&b, "\nExcerpt: %s\n", doc.ContentPreview)
	}

	return strings.TrimRight(b.String(), "\n")
}
