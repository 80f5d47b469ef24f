package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hollowaylabs/libris/internal/document"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for list and search output

	summaryTitleMaxLen = 70 // Title truncation in document summaries
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON)
// and exits with the given code.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the generic response for commands that report a
// status and optionally a path.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// truncateString shortens s to maxLen runes, appending "..." when cut.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// printDocSummary prints one document of list or search output.
func printDocSummary(num int, doc document.Document) {
	fmt.Printf("[%d] %s\n", num, doc.ID)
	fmt.Printf("    %s\n", truncateString(doc.Title, summaryTitleMaxLen))

	var details []string
	if doc.Category != "" {
		details = append(details, doc.Category)
	}
	if doc.Difficulty != "" {
		details = append(details, doc.Difficulty)
	}
	if len(doc.Authors) > 0 {
		details = append(details, strings.Join(doc.Authors, ", "))
	}
	if len(details) > 0 {
		fmt.Printf("    %s\n", strings.Join(details, " | "))
	}
	fmt.Println()
}
