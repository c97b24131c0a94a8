package vector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// PostgresIndex is a pgvector implementation of the core.VectorIndex
// interface. Unlike the SQLite and MySQL backends, the cosine-distance
// ranking runs inside Postgres via the <=> operator.
type PostgresIndex struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *zap.Logger
}

// NewPostgresIndex creates a new pgvector-backed index. The target
// database must have the pgvector extension installed.
func NewPostgresIndex(ctx context.Context, dsn string, dimensions int, logger *zap.Logger) (*PostgresIndex, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}

	if dimensions <= 0 {
		dimensions = 1536
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS message_vectors (
			message_id TEXT PRIMARY KEY,
			category TEXT,
			embedding vector(%d)
		)
	`, dimensions))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresIndex{
		pool:       pool,
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// Store attaches an embedding and category to a message id
func (idx *PostgresIndex) Store(ctx context.Context, id string, embedding []float32, category core.Category) error {
	_, err := idx.pool.Exec(ctx, `
		INSERT INTO message_vectors (message_id, category, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id) DO UPDATE
		SET category = EXCLUDED.category, embedding = EXCLUDED.embedding
	`, id, string(category), pgVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// FindSimilar returns up to k nearest neighbors of the message with the
// given id, ranked by pgvector cosine distance. A query message that is
// unknown or has no embedding yields an empty result.
func (idx *PostgresIndex) FindSimilar(ctx context.Context, id string, k int) ([]core.Neighbor, error) {
	// Missing row and missing embedding are both first-class empty
	// results, not errors
	var encoded *string
	err := idx.pool.QueryRow(ctx, `
		SELECT embedding::text FROM message_vectors WHERE message_id = $1
	`, id).Scan(&encoded)
	if err == pgx.ErrNoRows || (err == nil && encoded == nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load query embedding: %w", err)
	}

	rows, err := idx.pool.Query(ctx, `
		SELECT message_id, category,
		       embedding <=> (SELECT embedding FROM message_vectors WHERE message_id = $1) AS distance
		FROM message_vectors
		WHERE message_id != $1 AND embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT $2
	`, id, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()

	var neighbors []core.Neighbor
	for rows.Next() {
		var otherID, category string
		var distance float64
		if err := rows.Scan(&otherID, &category, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor row: %w", err)
		}
		neighbors = append(neighbors, core.Neighbor{
			ID:       otherID,
			Category: core.NormalizeCategory(category),
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate neighbors: %w", err)
	}

	return neighbors, nil
}

// Stop closes the connection pool
func (idx *PostgresIndex) Stop() {
	idx.pool.Close()
}

// pgVector converts a float32 slice to the pgvector literal format
func pgVector(v []float32) string {
	if len(v) == 0 {
		return "[0]"
	}

	buf := make([]byte, 0, len(v)*13+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(f), 'f', 6, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}
