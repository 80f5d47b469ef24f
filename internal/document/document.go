// Package document defines the core domain types for library documents.
package document

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"regexp"
	"time"
)

// Document represents one entry of the library collection.
type Document struct {
	// Identity
	ID       string `json:"id"`       // Stable identifier derived from the filepath
	Filename string `json:"filename"` // Base name of the source file
	Filepath string `json:"filepath"` // Library-relative path, e.g. "documents/intro.pdf"

	// Metadata
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	UploadDate string   `json:"upload_date"` // RFC 3339 timestamp of ingestion
	FileSize   int64    `json:"file_size"`
	Summary    string   `json:"summary,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`

	// ContentPreview holds the leading text of the document for display
	// and search. Embeddings, topics, and layout positions are not part
	// of the document entity.
	ContentPreview string `json:"content_preview,omitempty"`
}

// IDPattern is the regex pattern for valid document IDs.
// Must start with alphanumeric, followed by alphanumeric, hyphens, or underscores.
var IDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Categories are the recognized document categories.
var Categories = []string{"AI", "Machine Learning", "Data Science", "Analytics", "Business", "Technology", "Research"}

// Difficulties are the recognized difficulty labels.
var Difficulties = []string{"Beginner", "Intermediate", "Advanced"}

// MaxKeywords caps the keyword list per document.
const MaxKeywords = 5

// Validation errors.
var (
	ErrEmptyID           = errors.New("id is required")
	ErrInvalidID         = errors.New("id must match pattern: lowercase alphanumeric, hyphens, underscores; must start with alphanumeric")
	ErrEmptyFilename     = errors.New("filename is required")
	ErrEmptyFilepath     = errors.New("filepath is required")
	ErrEmptyTitle        = errors.New("title is required")
	ErrInvalidDifficulty = errors.New("difficulty must be one of: Beginner, Intermediate, Advanced")
	ErrDuplicateID       = errors.New("document with this id already exists")
	ErrNotFound          = errors.New("document not found")
)

// NewID derives the stable document identifier from a library-relative
// filepath: the lowercase hex MD5 of the path string.
func NewID(filepath string) string {
	sum := md5.Sum([]byte(filepath))
	return hex.EncodeToString(sum[:])
}

// Validate checks required fields and value sets.
// Returns the first violation found.
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(d.ID) {
		return ErrInvalidID
	}
	if d.Filename == "" {
		return ErrEmptyFilename
	}
	if d.Filepath == "" {
		return ErrEmptyFilepath
	}
	if d.Title == "" {
		return ErrEmptyTitle
	}
	if d.Difficulty != "" && !validDifficulty(d.Difficulty) {
		return ErrInvalidDifficulty
	}
	return nil
}

// ValidateID validates just the ID field (useful for lookup operations).
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

func validDifficulty(difficulty string) bool {
	for _, d := range Difficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}

// Normalize fills derivable fields and trims value lists: a missing ID is
// derived from the filepath, a missing upload date is stamped with now,
// keywords are capped at MaxKeywords.
func (d *Document) Normalize(now time.Time) {
	if d.ID == "" && d.Filepath != "" {
		d.ID = NewID(d.Filepath)
	}
	if d.UploadDate == "" {
		d.UploadDate = now.Format(time.RFC3339)
	}
	if len(d.Keywords) > MaxKeywords {
		d.Keywords = d.Keywords[:MaxKeywords]
	}
}

// FindByID returns the document with the given id, or nil.
func FindByID(docs []Document, id string) *Document {
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i]
		}
	}
	return nil
}

// DetectDuplicateIDs returns the ids that occur more than once, in first
// occurrence order.
func DetectDuplicateIDs(docs []Document) []string {
	seen := make(map[string]int, len(docs))
	var dups []string
	for _, d := range docs {
		seen[d.ID]++
		if seen[d.ID] == 2 {
			dups = append(dups, d.ID)
		}
	}
	return dups
}
