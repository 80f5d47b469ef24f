package graph

import (
	"time"

	"github.com/hollowaylabs/libris/internal/embedding"
)

// Build computes the similarity graph for an embedding set. For a fixed
// input and threshold the output is exactly reproducible: ids are
// enumerated in sorted order and each unordered pair is visited once.
func Build(set embedding.Set, threshold float64) *Graph {
	links := buildLinks(set, threshold)
	clusters := BuildClusters(set)

	return &Graph{
		Embeddings: set,
		Clusters:   clusters,
		Links:      links,
		Metadata: Metadata{
			GeneratedAt:         time.Now().UTC().Format(generatedAtFormat),
			TotalDocuments:      len(set),
			TotalTopics:         len(clusters),
			TotalLinks:          len(links),
			SimilarityThreshold: threshold,
		},
	}
}

// buildLinks emits one link per unordered pair whose cosine similarity is
// strictly greater than the threshold. Documents without a vector stay
// isolated. Fewer than two embedded documents yield an empty link set.
func buildLinks(set embedding.Set, threshold float64) []Link {
	ids := set.IDs()

	var links []Link
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a := set[ids[i]]
			b := set[ids[j]]
			if len(a.Vector) == 0 || len(b.Vector) == 0 {
				continue
			}

			sim := float64(Cosine(a.Vector, b.Vector))
			if sim > threshold {
				sim = clamp01(sim)
				links = append(links, Link{
					Source:     ids[i],
					Target:     ids[j],
					Similarity: sim,
					Weight:     sim,
				})
			}
		}
	}
	return links
}
