package vector

import (
	"context"
	"sync"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

type memoryEntry struct {
	embedding []float32
	category  core.Category
}

// MemoryIndex is an in-memory implementation of the core.VectorIndex
// interface. Safe for concurrent use.
type MemoryIndex struct {
	entries map[string]*memoryEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryIndex creates a new in-memory vector index
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]*memoryEntry),
		logger:  logger,
	}
}

// Store attaches an embedding and category to a message id
func (idx *MemoryIndex) Store(ctx context.Context, id string, embedding []float32, category core.Category) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	idx.entries[id] = &memoryEntry{
		embedding: stored,
		category:  category,
	}
	return nil
}

// FindSimilar returns up to k nearest neighbors of the message with the
// given id. A query message that is unknown or has no embedding yields
// an empty result.
func (idx *MemoryIndex) FindSimilar(ctx context.Context, id string, k int) ([]core.Neighbor, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query, ok := idx.entries[id]
	if !ok || len(query.embedding) == 0 {
		return nil, nil
	}

	neighbors := make([]core.Neighbor, 0, len(idx.entries))
	for otherID, entry := range idx.entries {
		if otherID == id || len(entry.embedding) == 0 {
			continue
		}
		neighbors = append(neighbors, core.Neighbor{
			ID:       otherID,
			Category: entry.category,
			Distance: cosineDistance(query.embedding, entry.embedding),
		})
	}

	return rankNeighbors(neighbors, k), nil
}

// Len returns the number of stored entries
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}
