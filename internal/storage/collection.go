// Package storage provides the document collection file layer and the
// ephemeral SQLite catalog cache. The JSON collection file is canonical;
// the cache is disposable and rebuilt from it.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollowaylabs/libris/internal/document"
)

// ReadCollection reads the document collection from a JSON array file.
// A missing file is an empty library, not an error.
func ReadCollection(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	var docs []document.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing collection: %w", err)
	}
	return docs, nil
}

// WriteCollection writes the document collection atomically: marshal to a
// temp file in the target directory, then rename over the destination.
func WriteCollection(path string, docs []document.Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if docs == nil {
		docs = []document.Document{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".collection-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing collection file: %w", err)
	}
	return nil
}

// CollectionHash returns the SHA-256 of the collection file contents,
// used for cache staleness checks. A missing file hashes as empty input.
func CollectionHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading collection: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
