package graph

import (
	"sort"

	"github.com/hollowaylabs/libris/internal/embedding"
)

// palette holds the topic cluster colors. Assignment cycles through the
// palette by sorted topic index, so a fixed topic set always gets the
// same colors.
var palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85C1E9", "#D7BDE2",
}

// Cluster is a named group of documents sharing a topic label. Centroid
// is derived from the members and must be recomputed when membership
// changes; it is persisted only as part of the graph document.
type Cluster struct {
	Topic     string    `json:"topic"`
	Color     string    `json:"color"`
	Documents []string  `json:"documents"`
	Centroid  []float32 `json:"centroid"`
}

// BuildClusters groups embedded documents by topic label. Topics are
// enumerated in sorted order; member ids are sorted; documents without a
// topic label belong to no cluster.
func BuildClusters(set embedding.Set) []Cluster {
	byTopic := make(map[string][]string)
	for id, r := range set {
		if r.Topic == "" {
			continue
		}
		byTopic[r.Topic] = append(byTopic[r.Topic], id)
	}

	topics := make([]string, 0, len(byTopic))
	for t := range byTopic {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	clusters := make([]Cluster, 0, len(topics))
	for i, topic := range topics {
		members := byTopic[topic]
		sort.Strings(members)

		c := Cluster{
			Topic:     topic,
			Color:     palette[i%len(palette)],
			Documents: members,
		}
		c.RecomputeCentroid(set)
		clusters = append(clusters, c)
	}
	return clusters
}

// RecomputeCentroid recalculates the centroid as the element-wise mean of
// the member vectors. Members without a vector, or whose vector length
// differs from the first member's, are skipped; with no usable members
// the centroid is empty.
func (c *Cluster) RecomputeCentroid(set embedding.Set) {
	var sum []float32
	count := 0

	for _, id := range c.Documents {
		vec := set[id].Vector
		if len(vec) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		if len(vec) != len(sum) {
			continue
		}
		for i, v := range vec {
			sum[i] += v
		}
		count++
	}

	if count == 0 {
		c.Centroid = nil
		return
	}
	for i := range sum {
		sum[i] /= float32(count)
	}
	c.Centroid = sum
}
