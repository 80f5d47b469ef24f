package viz

import (
	"github.com/hollowaylabs/libris/internal/document"
	"github.com/hollowaylabs/libris/internal/graph"
)

// maxLabelRunes bounds node labels; the full title stays in the tooltip.
const maxLabelRunes = 32

// defaultNodeColor is used for documents outside every topic cluster.
const defaultNodeColor = "#95A5A6"

// BuildGraphData projects a knowledge graph and its catalog documents
// into renderable form. Every document becomes a node, colored by its
// topic cluster and sized by link degree; documents without links stay
// as isolated nodes.
func BuildGraphData(g *graph.Graph, docs []document.Document) *GraphData {
	colors := g.TopicColors()

	nodes := make([]Node, 0, len(docs))
	for _, n := range g.Nodes(docs) {
		color := colors[n.Topic]
		if color == "" {
			color = defaultNodeColor
		}
		nodes = append(nodes, Node{
			ID:     n.ID,
			Label:  nodeLabel(n.Title, n.ID),
			Color:  color,
			Title:  n.Title,
			Topic:  n.Topic,
			Degree: n.Degree,
		})
	}

	edges := make([]Edge, 0, len(g.Links))
	for _, l := range g.Links {
		edges = append(edges, Edge{
			Source:     l.Source,
			Target:     l.Target,
			Similarity: l.Similarity,
			Weight:     l.Weight,
		})
	}

	return &GraphData{Nodes: nodes, Edges: edges}
}

// nodeLabel derives the short display label: the title truncated on a
// rune boundary, or the document id when no title is set.
func nodeLabel(title, id string) string {
	if title == "" {
		return id
	}
	runes := []rune(title)
	if len(runes) <= maxLabelRunes {
		return title
	}
	return string(runes[:maxLabelRunes]) + "..."
}
