// Package embedding defines the precomputed document embeddings consumed
// by the graph builder. Embeddings are produced by an external offline
// pipeline and treated as read-only input.
package embedding

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Record is the embedding entry for a single document.
type Record struct {
	Vector          []float32 `json:"embedding"`
	Topic           string    `json:"topic,omitempty"`
	TopicConfidence float64   `json:"topicConfidence,omitempty"`
}

// Dimensions returns the dimensionality of the record's vector.
func (r Record) Dimensions() int {
	return len(r.Vector)
}

// Set maps document ids to their embedding records.
type Set map[string]Record

// IDs returns the document ids in sorted order. Sorted enumeration keeps
// every derived computation reproducible for a fixed input.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Topics returns the distinct topic labels in sorted order. Documents
// without a topic label are not represented.
func (s Set) Topics() []string {
	seen := make(map[string]bool)
	for _, r := range s {
		if r.Topic != "" {
			seen[r.Topic] = true
		}
	}
	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// HasVector reports whether the document has a usable embedding vector.
func (s Set) HasVector(id string) bool {
	r, ok := s[id]
	return ok && len(r.Vector) > 0
}

// LoadSet reads an embedding mapping from a JSON file. Both the bare
// mapping form {id: record} and the knowledge graph document form with a
// top-level "embeddings" key are accepted.
func LoadSet(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading embeddings file: %w", err)
	}

	var wrapped struct {
		Embeddings Set `json:"embeddings"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Embeddings != nil {
		return wrapped.Embeddings, nil
	}

	var bare Set
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing embeddings file: %w", err)
	}
	return bare, nil
}
