// Package extract pulls text out of library files for previews and titles.
// Extraction is best-effort: a file we cannot read yields an empty preview,
// not a failed ingestion.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PreviewLength is the preview size in runes, matching the stored
// content_preview convention.
const PreviewLength = 500

// previewPages bounds how deep into a PDF the preview extraction reads.
const previewPages = 5

// ErrUnsupportedType marks file types the extractor does not handle.
var ErrUnsupportedType = errors.New("unsupported file type")

// Text extracts plain text from a library file. PDF extraction reads
// at most maxPages pages (0 = all); other supported types are read whole.
func Text(path string, maxPages int) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfText(path, maxPages)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}

// Preview returns the leading text of a file, whitespace-normalized and
// truncated to PreviewLength runes with a trailing ellipsis. Extraction
// failures produce an empty preview.
func Preview(path string) string {
	text, err := Text(path, previewPages)
	if err != nil {
		return ""
	}

	text = normalizeWhitespace(text)
	truncated, cut := truncateRunes(text, PreviewLength)
	if cut {
		return truncated + "..."
	}
	return truncated
}

// Title attempts to extract a display title from the file contents:
// the first heading of a markdown file, or the first substantial line
// otherwise. Returns "" when nothing usable is found.
func Title(path string) string {
	text, err := Text(path, 1)
	if err != nil {
		return ""
	}

	markdown := strings.EqualFold(filepath.Ext(path), ".md")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if markdown && strings.HasPrefix(line, "#") {
			if heading := strings.TrimSpace(strings.TrimLeft(line, "#")); heading != "" {
				return heading
			}
			continue
		}
		// Skip short fragments, page numbers and the like
		if len([]rune(line)) >= 4 {
			return line
		}
	}
	return ""
}

// TitleFromFilename derives a fallback title from a file name:
// extension stripped, separators spaced, words capitalized.
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")

	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// pdfText extracts text from the first maxPages pages of a PDF.
func pdfText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// normalizeWhitespace collapses all whitespace runs to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to max runes, reporting whether it was cut.
func truncateRunes(s string, max int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}
	return string(runes[:max]), true
}
