package core

import (
	"context"
)

// Classifier defines the interface for the upstream classification model
type Classifier interface {
	// Classify produces a raw classification for a message from its
	// subject, plain-text body and sender address
	Classify(ctx context.Context, subject, body, sender string) (*Classification, error)
}

// Embedder defines the interface for the embedding endpoint
type Embedder interface {
	// Embed vectorizes text. Implementations return an all-zero vector
	// of the configured length on total failure, never nil.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex defines the interface for the message embedding store
type VectorIndex interface {
	// Store attaches an embedding (and the message's stored category)
	// to a message id
	Store(ctx context.Context, id string, embedding []float32, category Category) error

	// FindSimilar returns up to k previously stored messages nearest to
	// the message with the given id, by ascending cosine distance. The
	// query message itself and messages without an embedding are
	// excluded.
	FindSimilar(ctx context.Context, id string, k int) ([]Neighbor, error)
}
