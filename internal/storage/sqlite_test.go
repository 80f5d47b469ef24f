package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hollowaylabs/libris/internal/document"
)

// setupTestDB creates a test database and collection file with test data
func setupTestDB(t *testing.T) (*DB, string, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "cache.db")
	collectionPath := filepath.Join(tmpDir, "documents.json")

	docs := []document.Document{
		{
			ID:             "a1b2c3",
			Filename:       "intro_to_ml.pdf",
			Filepath:       "documents/intro_to_ml.pdf",
			Title:          "Introduction to Machine Learning",
			Authors:        []string{"Jane Doe", "John Smith"},
			UploadDate:     "2026-03-15T10:00:00Z",
			FileSize:       204800,
			Summary:        "A gentle introduction to supervised learning and model evaluation.",
			Keywords:       []string{"machine learning", "supervised", "regression"},
			Category:       "Machine Learning",
			Difficulty:     "Beginner",
			ContentPreview: "Machine learning is the study of algorithms that improve with experience...",
		},
		{
			ID:             "d4e5f6",
			Filename:       "neural_networks.pdf",
			Filepath:       "documents/neural_networks.pdf",
			Title:          "Deep Neural Networks in Practice",
			Authors:        []string{"Alice Jones"},
			UploadDate:     "2026-04-01T09:30:00Z",
			FileSize:       512000,
			Summary:        "Architectures and training strategies for deep networks.",
			Keywords:       []string{"deep learning", "neural networks"},
			Category:       "AI",
			Difficulty:     "Advanced",
			ContentPreview: "A neural network is composed of layers of connected units...",
		},
		{
			ID:         "g7h8i9",
			Filename:   "quarterly_report.md",
			Filepath:   "documents/quarterly_report.md",
			Title:      "Quarterly Business Report",
			UploadDate: "2026-04-10T14:00:00Z",
			FileSize:   51200,
			Summary:    "Revenue analysis for the first quarter.",
			Keywords:   []string{"revenue", "analysis"},
			Category:   "Business",
			Difficulty: "Intermediate",
		},
	}

	if err := WriteCollection(collectionPath, docs); err != nil {
		t.Fatalf("Failed to write test collection: %v", err)
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	if _, err := db.RebuildFromCollection(collectionPath); err != nil {
		db.Close()
		t.Fatalf("Failed to rebuild DB: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, tmpDir, cleanup
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "cache.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	// Verify file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
}

func TestDB_RebuildFromCollection(t *testing.T) {
	db, tmpDir, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	// Test rebuild overwrites
	collectionPath := filepath.Join(tmpDir, "documents.json")
	newDocs := []document.Document{
		{
			ID:       "solo1",
			Filename: "solo.txt",
			Filepath: "documents/solo.txt",
			Title:    "Only Document",
			FileSize: 100,
		},
	}
	if err := WriteCollection(collectionPath, newDocs); err != nil {
		t.Fatalf("WriteCollection() error = %v", err)
	}

	rebuilt, err := db.RebuildFromCollection(collectionPath)
	if err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}
	if rebuilt != 1 {
		t.Errorf("RebuildFromCollection() = %d, want 1", rebuilt)
	}

	count, _ = db.Count()
	if count != 1 {
		t.Errorf("After rebuild, Count() = %d, want 1", count)
	}
}

func TestDB_Stale(t *testing.T) {
	db, tmpDir, cleanup := setupTestDB(t)
	defer cleanup()

	collectionPath := filepath.Join(tmpDir, "documents.json")

	stale, err := db.Stale(collectionPath)
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if stale {
		t.Error("Stale() = true right after rebuild, want false")
	}

	// Touch the collection
	docs, _ := ReadCollection(collectionPath)
	docs[0].Summary = "An updated summary."
	if err := WriteCollection(collectionPath, docs); err != nil {
		t.Fatalf("WriteCollection() error = %v", err)
	}

	stale, err = db.Stale(collectionPath)
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if !stale {
		t.Error("Stale() = false after collection changed, want true")
	}

	// Rebuild resets staleness
	if _, err := db.RebuildFromCollection(collectionPath); err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}
	stale, _ = db.Stale(collectionPath)
	if stale {
		t.Error("Stale() = true after rebuild, want false")
	}
}

func TestDB_Stale_FreshCache(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := OpenDB(filepath.Join(tmpDir, "cache.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	// A cache that was never rebuilt has no recorded hash
	stale, err := db.Stale(filepath.Join(tmpDir, "documents.json"))
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if !stale {
		t.Error("Stale() = false for never-rebuilt cache, want true")
	}
}

func TestDB_GetByID(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		id        string
		wantFound bool
		wantTitle string
	}{
		{"a1b2c3", true, "Introduction to Machine Learning"},
		{"d4e5f6", true, "Deep Neural Networks in Practice"},
		{"missing", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			doc, err := db.GetByID(tt.id)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}

			if tt.wantFound {
				if doc == nil {
					t.Error("GetByID() returned nil, want doc")
					return
				}
				if doc.Title != tt.wantTitle {
					t.Errorf("GetByID() title = %q, want %q", doc.Title, tt.wantTitle)
				}
			} else {
				if doc != nil {
					t.Errorf("GetByID() returned %+v, want nil", doc)
				}
			}
		})
	}
}

func TestDB_GetByID_FullDocument(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	doc, err := db.GetByID("a1b2c3")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc == nil {
		t.Fatal("GetByID() returned nil")
	}

	// Verify all fields
	if doc.ID != "a1b2c3" {
		t.Errorf("ID = %q, want a1b2c3", doc.ID)
	}
	if doc.Filename != "intro_to_ml.pdf" {
		t.Errorf("Filename = %q, want intro_to_ml.pdf", doc.Filename)
	}
	if doc.Filepath != "documents/intro_to_ml.pdf" {
		t.Errorf("Filepath = %q, want documents/intro_to_ml.pdf", doc.Filepath)
	}
	if doc.UploadDate != "2026-03-15T10:00:00Z" {
		t.Errorf("UploadDate = %q, want 2026-03-15T10:00:00Z", doc.UploadDate)
	}
	if doc.FileSize != 204800 {
		t.Errorf("FileSize = %d, want 204800", doc.FileSize)
	}
	if len(doc.Authors) != 2 {
		t.Fatalf("Authors len = %d, want 2", len(doc.Authors))
	}
	if doc.Authors[0] != "Jane Doe" {
		t.Errorf("Authors[0] = %q, want Jane Doe", doc.Authors[0])
	}
	if len(doc.Keywords) != 3 {
		t.Fatalf("Keywords len = %d, want 3", len(doc.Keywords))
	}
	if doc.Category != "Machine Learning" || doc.Difficulty != "Beginner" {
		t.Errorf("Category/Difficulty = %q/%q, want Machine Learning/Beginner", doc.Category, doc.Difficulty)
	}
	if doc.ContentPreview == "" {
		t.Error("ContentPreview is empty")
	}
}

func TestDB_Search(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		query   string
		limit   int
		wantIDs []string
		wantMin int // Minimum expected results (for flexibility)
	}{
		// Title search
		{"machine learning", 10, []string{"a1b2c3"}, 1},
		{"neural networks", 10, []string{"d4e5f6"}, 1},

		// Summary search
		{"supervised", 10, []string{"a1b2c3"}, 1},
		{"revenue", 10, []string{"g7h8i9"}, 1},

		// Keyword search
		{"regression", 10, []string{"a1b2c3"}, 1},

		// Content preview search
		{"layers", 10, []string{"d4e5f6"}, 1},

		// No results
		{"nonexistent query xyz", 10, nil, 0},

		// Limit
		{"learning", 1, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			docs, err := db.Search(tt.query, tt.limit)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if len(docs) < tt.wantMin {
				t.Errorf("Search(%q) returned %d results, want at least %d", tt.query, len(docs), tt.wantMin)
			}

			if tt.wantIDs != nil {
				for _, wantID := range tt.wantIDs {
					found := false
					for _, doc := range docs {
						if doc.ID == wantID {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("Search(%q) missing expected ID %q", tt.query, wantID)
					}
				}
			}
		})
	}
}

func TestDB_SearchField(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	// Title search
	docs, err := db.SearchField("title", "Neural", 10)
	if err != nil {
		t.Fatalf("SearchField(title) error = %v", err)
	}
	if len(docs) < 1 {
		t.Error("SearchField(title, Neural) returned no results")
	}

	// Keyword search
	docs, err = db.SearchField("keyword", "regression", 10)
	if err != nil {
		t.Fatalf("SearchField(keyword) error = %v", err)
	}
	if len(docs) < 1 {
		t.Error("SearchField(keyword, regression) returned no results")
	}

	// Summary search
	docs, err = db.SearchField("summary", "quarter", 10)
	if err != nil {
		t.Fatalf("SearchField(summary) error = %v", err)
	}
	if len(docs) < 1 {
		t.Error("SearchField(summary, quarter) returned no results")
	}

	// Invalid field
	_, err = db.SearchField("invalid", "test", 10)
	if err == nil {
		t.Error("SearchField(invalid) should return error")
	}
}

func TestDB_SearchWithFilters(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		name    string
		filters SearchFilters
		limit   int
		wantIDs []string
		wantMin int
	}{
		{
			name:    "keyword only",
			filters: SearchFilters{Keyword: "machine learning"},
			limit:   10,
			wantIDs: []string{"a1b2c3"},
			wantMin: 1,
		},
		{
			name:    "title only",
			filters: SearchFilters{Title: "Neural"},
			limit:   10,
			wantIDs: []string{"d4e5f6"},
			wantMin: 1,
		},
		{
			name:    "category only",
			filters: SearchFilters{Category: "Business"},
			limit:   10,
			wantIDs: []string{"g7h8i9"},
			wantMin: 1,
		},
		{
			name:    "difficulty only",
			filters: SearchFilters{Difficulty: "Advanced"},
			limit:   10,
			wantIDs: []string{"d4e5f6"},
			wantMin: 1,
		},
		{
			name:    "keyword and category combined",
			filters: SearchFilters{Keyword: "learning", Category: "Machine Learning"},
			limit:   10,
			wantIDs: []string{"a1b2c3"},
			wantMin: 1,
		},
		{
			name:    "category excludes keyword match",
			filters: SearchFilters{Keyword: "learning", Category: "Business"},
			limit:   10,
			wantMin: 0,
		},
		{
			name:    "category and difficulty combined",
			filters: SearchFilters{Category: "AI", Difficulty: "Advanced"},
			limit:   10,
			wantIDs: []string{"d4e5f6"},
			wantMin: 1,
		},
		{
			name:    "no matches",
			filters: SearchFilters{Category: "Research"},
			limit:   10,
			wantMin: 0,
		},
		{
			name:    "no filters lists everything",
			filters: SearchFilters{},
			limit:   10,
			wantMin: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := db.SearchWithFilters(tt.filters, tt.limit)
			if err != nil {
				t.Fatalf("SearchWithFilters() error = %v", err)
			}

			if len(docs) < tt.wantMin {
				t.Errorf("SearchWithFilters() returned %d results, want at least %d", len(docs), tt.wantMin)
			}

			if tt.wantIDs != nil {
				for _, wantID := range tt.wantIDs {
					found := false
					for _, doc := range docs {
						if doc.ID == wantID {
							found = true
							break
						}
					}
					if !found {
						t.Errorf("SearchWithFilters() missing expected ID %q", wantID)
					}
				}
			}
		})
	}
}

func TestDB_ListAll(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	// List all
	docs, err := db.ListAll(0)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("ListAll(0) returned %d docs, want 3", len(docs))
	}

	// Ordered by id
	for i := 1; i < len(docs); i++ {
		if docs[i-1].ID > docs[i].ID {
			t.Errorf("ListAll() not ordered: %q before %q", docs[i-1].ID, docs[i].ID)
		}
	}

	// With limit
	docs, err = db.ListAll(2)
	if err != nil {
		t.Fatalf("ListAll(2) error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ListAll(2) returned %d docs, want 2", len(docs))
	}

	// Limit greater than count
	docs, err = db.ListAll(100)
	if err != nil {
		t.Fatalf("ListAll(100) error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("ListAll(100) returned %d docs, want 3", len(docs))
	}
}

func TestDB_CategoryCounts(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	counts, err := db.CategoryCounts()
	if err != nil {
		t.Fatalf("CategoryCounts() error = %v", err)
	}

	want := map[string]int{
		"Machine Learning": 1,
		"AI":               1,
		"Business":         1,
	}
	for category, n := range want {
		if counts[category] != n {
			t.Errorf("CategoryCounts()[%q] = %d, want %d", category, counts[category], n)
		}
	}
}

func TestDB_EmptyCollection(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "cache.db")
	collectionPath := filepath.Join(tmpDir, "documents.json")

	if err := WriteCollection(collectionPath, nil); err != nil {
		t.Fatalf("WriteCollection() error = %v", err)
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromCollection(collectionPath)
	if err != nil {
		t.Fatalf("RebuildFromCollection() error = %v", err)
	}
	if count != 0 {
		t.Errorf("RebuildFromCollection() = %d, want 0", count)
	}

	dbCount, _ := db.Count()
	if dbCount != 0 {
		t.Errorf("Count() = %d, want 0", dbCount)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"two words", "two words"},
		{"  spaces  ", "spaces"},               // Trimmed
		{"", ""},                               // Empty stays empty
		{`with "quotes"`, `"with ""quotes"""`}, // Quotes escaped
		{"special*chars", `"special*chars"`},   // Special chars quoted
		{"term:colon", `"term:colon"`},         // Colon quoted
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := prepareFTSQuery(tt.input)
			if got != tt.want {
				t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDB_Close(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "cache.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}

	// Close should not error
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Operations after close should fail
	_, err = db.Count()
	if err == nil {
		t.Error("Operations after Close() should fail")
	}
}
