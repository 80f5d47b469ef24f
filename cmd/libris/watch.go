package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library and keep the catalog cache fresh",
	Long: `Watch the library data and documents directories, rebuilding the
catalog cache whenever the collection file changes.

Change events are written to stdout as they happen, one JSON object
per line (or one line of text with --human). Runs until interrupted.`,
	RunE: runWatch,
}

// WatchEvent is one line of watch output.
type WatchEvent struct {
	Event     string   `json:"event"`
	Paths     []string `json:"paths,omitempty"`
	Documents int      `json:"documents,omitempty"`
	Time      string   `json:"time"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := mustFindLibrary()
	db := mustOpenCatalog(root)
	defer db.Close()

	watcher, err := storage.NewWatcher(nil)
	if err != nil {
		exitWithError(ExitError, "starting watcher: %v", err)
	}
	defer watcher.Close()

	for _, dir := range []string{config.DataPath(root), config.FilesPath(root)} {
		if err := watcher.Add(dir); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if humanOutput {
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", root)
	} else {
		emitEvent(WatchEvent{Event: "watching", Paths: []string{root}})
	}

	collectionPath := config.CollectionPath(root)
	err = watcher.Run(ctx, func(paths []string) {
		event := WatchEvent{Event: "changed", Paths: paths}

		stale, err := db.Stale(collectionPath)
		if err == nil && stale {
			count, err := db.RebuildFromCollection(collectionPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: rebuilding catalog cache: %v\n", err)
			} else {
				event.Event = "rebuilt"
				event.Documents = count
			}
		}

		emitEvent(event)
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	return nil
}

// emitEvent writes one event line. Events are a stream, so JSON output
// is compact rather than indented.
func emitEvent(event WatchEvent) {
	event.Time = time.Now().UTC().Format(time.RFC3339)

	if humanOutput {
		switch event.Event {
		case "rebuilt":
			fmt.Printf("%s  rebuilt catalog (%d documents)\n", event.Time, event.Documents)
		default:
			fmt.Printf("%s  %s %v\n", event.Time, event.Event, event.Paths)
		}
		return
	}

	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Println(string(line))
}
