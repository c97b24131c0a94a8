package vector

import (
	"context"
	"testing"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

func TestMemoryIndexFindSimilarRanking(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(zap.NewNop())

	// Query vector points along the x axis; neighbors at increasing angles
	mustStore(t, idx, "query", []float32{1, 0})
	mustStore(t, idx, "close", []float32{0.9, 0.1})
	mustStore(t, idx, "far", []float32{0, 1})
	mustStore(t, idx, "opposite", []float32{-1, 0})

	neighbors, err := idx.FindSimilar(ctx, "query", 2)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}

	if len(neighbors) != 2 {
		t.Fatalf("got %d neighbors, want 2", len(neighbors))
	}
	if neighbors[0].ID != "close" {
		t.Errorf("nearest neighbor = %s, want close", neighbors[0].ID)
	}
	if neighbors[1].ID != "far" {
		t.Errorf("second neighbor = %s, want far", neighbors[1].ID)
	}
	if neighbors[0].Distance >= neighbors[1].Distance {
		t.Errorf("distances not ascending: %v >= %v", neighbors[0].Distance, neighbors[1].Distance)
	}
}

func TestMemoryIndexExcludesQueryMessage(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(zap.NewNop())

	mustStore(t, idx, "a", []float32{1, 0})
	mustStore(t, idx, "b", []float32{1, 0})

	neighbors, err := idx.FindSimilar(ctx, "a", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	for _, n := range neighbors {
		if n.ID == "a" {
			t.Error("query message must not appear in its own neighbors")
		}
	}
}

func TestMemoryIndexUnknownOrEmptyQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(zap.NewNop())
	mustStore(t, idx, "other", []float32{1, 0})

	neighbors, err := idx.FindSimilar(ctx, "missing", 5)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("unknown query returned %d neighbors", len(neighbors))
	}

	if err := idx.Store(ctx, "empty", nil, core.CategoryOther); err != nil {
		t.Fatalf("Store: %v", err)
	}
	neighbors, err = idx.FindSimilar(ctx, "empty", 5)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("embedding-less query returned %d neighbors", len(neighbors))
	}
}

func TestMemoryIndexStoreCopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(zap.NewNop())

	vec := []float32{1, 0}
	mustStore(t, idx, "a", vec)
	mustStore(t, idx, "b", []float32{1, 0})

	// Mutating the caller's slice must not affect the stored copy
	vec[0] = -1

	neighbors, err := idx.FindSimilar(ctx, "a", 1)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Distance > 1e-6 {
		t.Errorf("stored embedding was aliased to the caller's slice: %+v", neighbors)
	}
}

func TestMemoryIndexStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex(zap.NewNop())

	mustStore(t, idx, "a", []float32{1, 0})
	if err := idx.Store(ctx, "a", []float32{0, 1}, core.CategoryFinance); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}

	mustStore(t, idx, "probe", []float32{0, 1})
	neighbors, err := idx.FindSimilar(ctx, "probe", 1)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Category != core.CategoryFinance {
		t.Errorf("overwrite not applied: %+v", neighbors)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2.0},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1.0},
		{"empty", nil, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 0}
	encoded, err := encodeEmbedding(in)
	if err != nil {
		t.Fatalf("encodeEmbedding: %v", err)
	}
	out, err := decodeEmbedding(encoded)
	if err != nil {
		t.Fatalf("decodeEmbedding: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("element %d = %v, want %v", i, out[i], in[i])
		}
	}

	if _, err := decodeEmbedding("not json"); err == nil {
		t.Error("expected error for malformed data")
	}
}

func mustStore(t *testing.T, idx *MemoryIndex, id string, embedding []float32) {
	t.Helper()
	if err := idx.Store(context.Background(), id, embedding, core.CategoryWork); err != nil {
		t.Fatalf("Store(%s): %v", id, err)
	}
}
