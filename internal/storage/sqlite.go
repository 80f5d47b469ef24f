package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hollowaylabs/libris/internal/document"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite catalog cache connection.
type DB struct {
	db *sql.DB
}

// selectDocFields contains the standard field list for SELECT queries.
const selectDocFields = `id, filename, filepath, title,
	upload_date, file_size, summary,
	category, difficulty,
	authors_json, keywords_json, content_preview`

// OpenDB opens or creates the catalog database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Main documents table, mirroring the JSON collection file
		CREATE TABLE IF NOT EXISTS docs (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			title TEXT NOT NULL,
			upload_date TEXT,
			file_size INTEGER NOT NULL,
			summary TEXT,
			category TEXT,
			difficulty TEXT,
			authors_json TEXT,
			keywords_json TEXT,
			content_preview TEXT
		);

		-- Index for category filters
		CREATE INDEX IF NOT EXISTS idx_docs_category ON docs(category) WHERE category IS NOT NULL AND category != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS docs_fts USING fts5(
			id,
			title,
			summary,
			keywords_text,
			content_preview
		);

		-- Cache bookkeeping: hash of the collection file the cache was built from
		CREATE TABLE IF NOT EXISTS catalog_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromCollection clears the cache and rebuilds it from the JSON
// collection file, recording the collection hash for staleness checks.
func (d *DB) RebuildFromCollection(collectionPath string) (int, error) {
	docs, err := ReadCollection(collectionPath)
	if err != nil {
		return 0, fmt.Errorf("reading collection: %w", err)
	}

	// Clear existing data
	if _, err := d.db.Exec("DELETE FROM docs"); err != nil {
		return 0, fmt.Errorf("clearing docs table: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM docs_fts"); err != nil {
		return 0, fmt.Errorf("clearing docs_fts table: %w", err)
	}

	// Prepare statements
	docsStmt, err := d.db.Prepare(`
		INSERT INTO docs (
			id, filename, filepath, title,
			upload_date, file_size, summary,
			category, difficulty,
			authors_json, keywords_json, content_preview
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing docs insert: %w", err)
	}
	defer docsStmt.Close()

	ftsStmt, err := d.db.Prepare(`
		INSERT INTO docs_fts (id, title, summary, keywords_text, content_preview)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, doc := range docs {
		var authorsJSON, keywordsJSON []byte
		if len(doc.Authors) > 0 {
			authorsJSON, err = json.Marshal(doc.Authors)
			if err != nil {
				return 0, fmt.Errorf("marshaling authors for %s: %w", doc.ID, err)
			}
		}
		if len(doc.Keywords) > 0 {
			keywordsJSON, err = json.Marshal(doc.Keywords)
			if err != nil {
				return 0, fmt.Errorf("marshaling keywords for %s: %w", doc.ID, err)
			}
		}

		// Insert into docs table
		_, err = docsStmt.Exec(
			doc.ID, doc.Filename, doc.Filepath, doc.Title,
			nullableStringValue(doc.UploadDate), doc.FileSize, nullableStringValue(doc.Summary),
			nullableStringValue(doc.Category), nullableStringValue(doc.Difficulty),
			nullableString(authorsJSON), nullableString(keywordsJSON),
			nullableStringValue(doc.ContentPreview),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting doc %s: %w", doc.ID, err)
		}

		// Insert into FTS table
		keywordsText := strings.Join(doc.Keywords, ", ")
		_, err = ftsStmt.Exec(doc.ID, doc.Title, doc.Summary, keywordsText, doc.ContentPreview)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", doc.ID, err)
		}
	}

	hash, err := CollectionHash(collectionPath)
	if err != nil {
		return 0, err
	}
	if err := d.setMeta("collection_hash", hash); err != nil {
		return 0, fmt.Errorf("recording collection hash: %w", err)
	}

	return len(docs), nil
}

// Stale reports whether the cache was built from a different version of
// the collection file than the one currently on disk. A cache with no
// recorded hash is stale.
func (d *DB) Stale(collectionPath string) (bool, error) {
	current, err := CollectionHash(collectionPath)
	if err != nil {
		return false, err
	}
	stored, err := d.getMeta("collection_hash")
	if err != nil {
		return false, err
	}
	return stored != current, nil
}

// GetByID retrieves a document by its ID. Returns nil when not cached.
func (d *DB) GetByID(id string) (*document.Document, error) {
	row := d.db.QueryRow(`SELECT `+selectDocFields+` FROM docs WHERE id = ?`, id)
	return scanDocument(row)
}

// Search performs a full-text search across title, summary, keywords and
// content preview, best matches first.
func (d *DB) Search(query string, limit int) ([]document.Document, error) {
	// Escape special FTS5 characters and prepare query
	ftsQuery := prepareFTSQuery(query)

	// Join rather than subselect so the FTS5 rank ordering survives
	rows, err := d.db.Query(`
		SELECT docs.id, docs.filename, docs.filepath, docs.title,
			docs.upload_date, docs.file_size, docs.summary,
			docs.category, docs.difficulty,
			docs.authors_json, docs.keywords_json, docs.content_preview
		FROM docs
		JOIN docs_fts ON docs.id = docs_fts.id
		WHERE docs_fts MATCH ?
		ORDER BY docs_fts.rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SearchField performs a search on a specific field.
func (d *DB) SearchField(field, value string, limit int) ([]document.Document, error) {
	var ftsQuery string

	switch field {
	case "title":
		ftsQuery = "title:" + prepareFTSQuery(value)
	case "keyword":
		ftsQuery = "keywords_text:" + prepareFTSQuery(value)
	case "summary":
		ftsQuery = "summary:" + prepareFTSQuery(value)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	rows, err := d.db.Query(`
		SELECT `+selectDocFields+`
		FROM docs
		WHERE id IN (SELECT id FROM docs_fts WHERE docs_fts MATCH ?)
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// SearchFilters contains optional filters for SearchWithFilters.
//
// MAINTAINER NOTE: This filter-based approach works well for ~6-8 filters.
// Consider refactoring if:
//   - This struct exceeds 10 fields
//   - SearchWithFilters exceeds 80 lines
//   - You need complex logic (OR between different field types, negation)
//   - Filter interaction bugs become common
//
// The current approach mixes FTS5 (text search) and SQL WHERE (exact match).
// Both support OR natively, so adding same-type ORs is straightforward.
type SearchFilters struct {
	Keyword    string // General keyword search across all fields
	Title      string // Search in title only (FTS)
	Category   string // Exact category match (SQL)
	Difficulty string // Exact difficulty match (SQL)
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns documents matching ALL specified criteria (AND logic).
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]document.Document, error) {
	var ftsTerms []string
	var args []interface{}

	// Build FTS query parts (text-based searches)
	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}

	// Build the query
	var query string
	if len(ftsTerms) > 0 {
		ftsQuery := strings.Join(ftsTerms, " AND ")
		query = `SELECT ` + selectDocFields + `
			FROM docs
			WHERE id IN (SELECT id FROM docs_fts WHERE docs_fts MATCH ?)`
		args = append(args, ftsQuery)
	} else {
		query = `SELECT ` + selectDocFields + ` FROM docs WHERE 1=1`
	}

	// SQL-based filters (exact matches)
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, filters.Difficulty)
	}

	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListAll returns all documents ordered by id, optionally limited.
func (d *DB) ListAll(limit int) ([]document.Document, error) {
	query := `SELECT ` + selectDocFields + ` FROM docs ORDER BY id`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing docs: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Count returns the total number of cached documents.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM docs").Scan(&count)
	return count, err
}

// CategoryCounts returns the number of documents per category.
// Documents without a category are counted under the empty string.
func (d *DB) CategoryCounts() (map[string]int, error) {
	rows, err := d.db.Query("SELECT COALESCE(category, ''), COUNT(*) FROM docs GROUP BY COALESCE(category, '')")
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO catalog_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (d *DB) getMeta(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM catalog_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(s scanner) (*document.Document, error) {
	var doc document.Document
	var uploadDate, summary, category, difficulty sql.NullString
	var authorsJSON, keywordsJSON, contentPreview sql.NullString

	err := s.Scan(
		&doc.ID, &doc.Filename, &doc.Filepath, &doc.Title,
		&uploadDate, &doc.FileSize, &summary,
		&category, &difficulty,
		&authorsJSON, &keywordsJSON, &contentPreview,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Handle nullable fields
	doc.UploadDate = uploadDate.String
	doc.Summary = summary.String
	doc.Category = category.String
	doc.Difficulty = difficulty.String
	doc.ContentPreview = contentPreview.String

	// Parse JSON fields
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &doc.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors JSON for %s: %w", doc.ID, err)
		}
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &doc.Keywords); err != nil {
			return nil, fmt.Errorf("parsing keywords JSON for %s: %w", doc.ID, err)
		}
	}

	return &doc, nil
}

func scanDocuments(rows *sql.Rows) ([]document.Document, error) {
	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// For simple queries, just quote the terms
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		// Escape internal quotes and wrap in quotes
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
