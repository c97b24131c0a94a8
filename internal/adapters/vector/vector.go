// Package vector provides implementations of the core.VectorIndex port
// over several storage backends. All backends share the same contract:
// the query message and messages without an embedding are excluded, and
// neighbors are ranked by ascending cosine distance.
package vector

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mikey/llm-mail-triage/internal/core"
)

// cosineDistance returns 1 - cos(a, b). Vectors of mismatched length or
// zero magnitude are treated as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1.0
	}

	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// rankNeighbors sorts candidates by ascending distance and keeps at
// most k
func rankNeighbors(neighbors []core.Neighbor, k int) []core.Neighbor {
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// encodeEmbedding serializes an embedding for SQL text columns
func encodeEmbedding(embedding []float32) (string, error) {
	data, err := json.Marshal(embedding)
	if err != nil {
		return "", fmt.Errorf("failed to encode embedding: %w", err)
	}
	return string(data), nil
}

// decodeEmbedding deserializes an embedding stored by encodeEmbedding
func decodeEmbedding(data string) ([]float32, error) {
	var embedding []float32
	if err := json.Unmarshal([]byte(data), &embedding); err != nil {
		return nil, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return embedding, nil
}
