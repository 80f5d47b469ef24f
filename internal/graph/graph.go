// Package graph builds the document similarity graph: thresholded cosine
// links between embedded documents, topic clusters with display colors,
// and the persisted knowledge graph document.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollowaylabs/libris/internal/document"
	"github.com/hollowaylabs/libris/internal/embedding"
)

// DefaultThreshold is the minimum cosine similarity for a link when no
// threshold is configured.
const DefaultThreshold = 0.3

// generatedAtFormat matches the timestamp layout of existing graph files.
const generatedAtFormat = "2006-01-02 15:04:05 UTC"

var (
	ErrGraphNotFound = errors.New("knowledge graph file not found")
)

// Link is one similarity edge between two documents. Links are unordered
// pairs stored with Source < Target; similarity is in [0, 1] and only
// pairs strictly above the build threshold exist. Weight derives
// monotonically from similarity.
type Link struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
}

// Metadata describes one graph build.
type Metadata struct {
	GeneratedAt         string  `json:"generated_at"`
	TotalDocuments      int     `json:"total_documents"`
	TotalTopics         int     `json:"total_topics"`
	TotalLinks          int     `json:"total_links"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// Graph is the knowledge graph document: the input embeddings together
// with every derived value (clusters, links, build metadata).
type Graph struct {
	Embeddings embedding.Set `json:"embeddings"`
	Clusters   []Cluster     `json:"clusters"`
	Links      []Link        `json:"links"`
	Metadata   Metadata      `json:"metadata"`
}

// Node is the projection consumed by renderers: a catalog document
// enriched with its topic and link degree.
type Node struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Topic           string  `json:"topic,omitempty"`
	TopicConfidence float64 `json:"topic_confidence,omitempty"`
	Degree          int     `json:"degree"`
	HasEmbedding    bool    `json:"has_embedding"`
}

// Nodes projects catalog documents into graph nodes. Every document
// appears exactly once; documents without an embedding stay as isolated
// nodes with degree zero.
func (g *Graph) Nodes(docs []document.Document) []Node {
	degree := make(map[string]int, len(docs))
	for _, l := range g.Links {
		degree[l.Source]++
		degree[l.Target]++
	}

	nodes := make([]Node, 0, len(docs))
	for _, d := range docs {
		n := Node{ID: d.ID, Title: d.Title, Degree: degree[d.ID]}
		if r, ok := g.Embeddings[d.ID]; ok {
			n.Topic = r.Topic
			n.TopicConfidence = r.TopicConfidence
			n.HasEmbedding = len(r.Vector) > 0
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// TopicColors maps each clustered topic to its display color.
func (g *Graph) TopicColors() map[string]string {
	colors := make(map[string]string, len(g.Clusters))
	for _, c := range g.Clusters {
		colors[c.Topic] = c.Color
	}
	return colors
}

// Check validates the structural invariants of a graph document and
// returns every problem found.
func (g *Graph) Check() []string {
	var problems []string

	seen := make(map[[2]string]bool, len(g.Links))
	for _, l := range g.Links {
		if l.Source == l.Target {
			problems = append(problems, fmt.Sprintf("self link on %s", l.Source))
		}
		if _, ok := g.Embeddings[l.Source]; !ok {
			problems = append(problems, fmt.Sprintf("link source %s has no embedding record", l.Source))
		}
		if _, ok := g.Embeddings[l.Target]; !ok {
			problems = append(problems, fmt.Sprintf("link target %s has no embedding record", l.Target))
		}
		if l.Similarity < 0 || l.Similarity > 1 {
			problems = append(problems, fmt.Sprintf("link %s-%s similarity %v out of range", l.Source, l.Target, l.Similarity))
		}

		key := [2]string{l.Source, l.Target}
		if l.Target < l.Source {
			key = [2]string{l.Target, l.Source}
		}
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate link for pair %s-%s", key[0], key[1]))
		}
		seen[key] = true
	}

	for _, c := range g.Clusters {
		if c.Color == "" {
			problems = append(problems, fmt.Sprintf("cluster %s has no color", c.Topic))
		}
		for _, id := range c.Documents {
			if _, ok := g.Embeddings[id]; !ok {
				problems = append(problems, fmt.Sprintf("cluster %s member %s has no embedding record", c.Topic, id))
			}
		}
	}

	return problems
}

// Load reads a graph document from disk.
// Returns ErrGraphNotFound when the file does not exist.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrGraphNotFound
		}
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing graph file: %w", err)
	}
	return &g, nil
}

// Save writes the graph document atomically: marshal to a temp file in
// the target directory, then rename over the destination.
func Save(g *Graph, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".graph-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing graph file: %w", err)
	}
	return nil
}
