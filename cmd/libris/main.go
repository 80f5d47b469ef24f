// Command libris is a local-first document library CLI: a searchable
// catalog, a similarity knowledge graph, and chat over a local model.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/ollama"
	"github.com/hollowaylabs/libris/internal/profile"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// A local .env may carry OLLAMA_HOST or LIBRIS_LIBRARY; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like unknown flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "libris",
	Short: "Local document library with a knowledge graph",
	Long: `libris is a local-first CLI for a personal document library.

The JSON collection file is the source of truth. A SQLite FTS5 cache
serves catalog queries and is rebuilt from the collection whenever it
goes stale. The knowledge graph links documents whose embeddings are
similar, and chat answers questions against a local Ollama model.

All commands print JSON by default; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to begin the library search
// from, along with a non-zero exit code on failure.
func getStartingDirectory() (string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindLibrary resolves the library root, exits on error.
func mustFindLibrary() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.ResolveLibrary(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustLoadConfig loads the library configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenCatalog opens the catalog cache, rebuilding it from the
// collection file when stale. The caller owns Close.
func mustOpenCatalog(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog cache: %v", err)
	}

	collectionPath := config.CollectionPath(root)
	stale, err := db.Stale(collectionPath)
	if err != nil {
		db.Close()
		exitWithError(ExitError, "checking catalog cache: %v", err)
	}
	if stale {
		if _, err := db.RebuildFromCollection(collectionPath); err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding catalog cache: %v", err)
		}
	}
	return db
}

// effectiveHost returns the serving endpoint after overrides.
func effectiveHost(cfg *config.Config) string {
	if host := cfg.OllamaHostOverride(); host != "" {
		return host
	}
	return profile.DefaultBaseURL
}

// buildSignals picks the signal source: the configured memory hint when
// present, otherwise live system readings.
func buildSignals(cfg *config.Config, host string) profile.Signals {
	if cfg.MemoryGB > 0 {
		return profile.StaticSignals{
			MemoryGB:  cfg.MemoryGB,
			HasMemory: true,
			Host:      profile.ClassifyHosting(host),
		}
	}
	return profile.NewSystemSignals(host)
}

// resolveEnvironment detects the serving tier for this machine and
// applies the library's host and model overrides.
func resolveEnvironment(cfg *config.Config) *profile.EnvironmentConfig {
	host := effectiveHost(cfg)
	signals := buildSignals(cfg, host)

	var opts []profile.Option
	if host != profile.DefaultBaseURL {
		opts = append(opts, profile.WithBaseURL(host))
	}
	if model := cfg.OllamaModelOverride(); model != "" {
		opts = append(opts, profile.WithModel(model))
	}

	return profile.Resolve(profile.DetectTier(signals), signals.Hosting(), opts...)
}

// mustValidateOllama checks that the serving endpoint is reachable and,
// when checkModel is set, that the resolved model is installed.
func mustValidateOllama(ctx context.Context, client *ollama.Client, checkModel bool) {
	if err := client.IsAvailable(ctx); err != nil {
		exitWithError(ExitOllamaError, "Ollama is not reachable at %s\n\nStart Ollama with 'ollama serve' or install it from https://ollama.ai", client.BaseURL())
	}

	if checkModel {
		hasModel, err := client.HasModel(ctx)
		if err != nil {
			exitWithError(ExitError, "checking model availability: %v", err)
		}
		if !hasModel {
			exitWithError(ExitModelNotFound, "model '%s' not found\n\nRun 'ollama pull %s' to download it", client.ModelName(), client.ModelName())
		}
	}
}
