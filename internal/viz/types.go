// Package viz renders the knowledge graph as an interactive HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents one document in the rendered graph.
type Node struct {
	ID string `json:"id"`

	// Display
	Label string `json:"label"`
	Color string `json:"color"`

	// Tooltip fields
	Title string `json:"title,omitempty"`
	Topic string `json:"topic,omitempty"`

	// Sizing
	Degree int `json:"degree"`
}

// Edge represents one similarity link between two documents.
type Edge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
