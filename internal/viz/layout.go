package viz

import (
	"math"
	"sort"
)

// Position is one node's fixed coordinate in a precomputed layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps document id to its computed coordinate.
type Positions map[string]Position

// Layout canvas dimensions. The renderer fits the viewport to the laid
// out elements, so only the aspect ratio really matters.
const (
	canvasSize   = 800.0
	canvasMargin = 60.0
)

// ComputePositions lays out nodes for the circle and grid layouts. Node
// ids are processed in sorted order, so the same graph always produces
// the same coordinates. The force layout returns nil positions: the
// renderer runs its own simulation.
func ComputePositions(data *GraphData, layout string) (Positions, error) {
	if err := validateLayout(layout); err != nil {
		return nil, err
	}

	switch layout {
	case LayoutCircle:
		return circlePositions(data), nil
	case LayoutGrid:
		return gridPositions(data), nil
	default:
		return nil, nil
	}
}

// sortedIDs returns the graph's node ids in lexical order.
func sortedIDs(data *GraphData) []string {
	ids := make([]string, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

// circlePositions spaces nodes evenly around a circle.
func circlePositions(data *GraphData) Positions {
	ids := sortedIDs(data)
	positions := make(Positions, len(ids))

	center := canvasSize / 2
	radius := center - canvasMargin
	for i, id := range ids {
		angle := 2 * math.Pi * float64(i) / float64(len(ids))
		positions[id] = Position{
			X: center + radius*math.Cos(angle),
			Y: center + radius*math.Sin(angle),
		}
	}
	return positions
}

// gridPositions arranges nodes row by row in a near-square grid.
func gridPositions(data *GraphData) Positions {
	ids := sortedIDs(data)
	positions := make(Positions, len(ids))
	if len(ids) == 0 {
		return positions
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	step := (canvasSize - 2*canvasMargin) / float64(cols)
	for i, id := range ids {
		row := i / cols
		col := i % cols
		positions[id] = Position{
			X: canvasMargin + (float64(col)+0.5)*step,
			Y: canvasMargin + (float64(row)+0.5)*step,
		}
	}
	return positions
}
