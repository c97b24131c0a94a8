package vector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// SQLiteIndex is a SQLite implementation of the core.VectorIndex
// interface. Embeddings are stored as JSON text and scanned
// brute-force; the ranking happens in process.
type SQLiteIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteIndex creates a new SQLite vector index
func NewSQLiteIndex(dbPath string, logger *zap.Logger) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS message_vectors (
			message_id TEXT PRIMARY KEY,
			category TEXT,
			embedding TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteIndex{
		db:     db,
		logger: logger,
	}, nil
}

// Store attaches an embedding and category to a message id
func (idx *SQLiteIndex) Store(ctx context.Context, id string, embedding []float32, category core.Category) error {
	encoded, err := encodeEmbedding(embedding)
	if err != nil {
		return err
	}

	_, err = idx.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO message_vectors (message_id, category, embedding)
		VALUES (?, ?, ?)
	`, id, string(category), encoded)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}

// FindSimilar returns up to k nearest neighbors of the message with the
// given id. A query message that is unknown or has no embedding yields
// an empty result.
func (idx *SQLiteIndex) FindSimilar(ctx context.Context, id string, k int) ([]core.Neighbor, error) {
	var encoded sql.NullString
	err := idx.db.QueryRowContext(ctx, `
		SELECT embedding FROM message_vectors WHERE message_id = ?
	`, id).Scan(&encoded)
	if err == sql.ErrNoRows || (err == nil && !encoded.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load query embedding: %w", err)
	}

	query, err := decodeEmbedding(encoded.String)
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, nil
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT message_id, category, embedding
		FROM message_vectors
		WHERE message_id != ? AND embedding IS NOT NULL
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}
	defer rows.Close()

	var neighbors []core.Neighbor
	for rows.Next() {
		var otherID, category, otherEncoded string
		if err := rows.Scan(&otherID, &category, &otherEncoded); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}

		other, err := decodeEmbedding(otherEncoded)
		if err != nil {
			idx.logger.Warn("Skipping candidate with undecodable embedding",
				zap.String("message_id", otherID),
				zap.Error(err))
			continue
		}
		if len(other) == 0 {
			continue
		}

		neighbors = append(neighbors, core.Neighbor{
			ID:       otherID,
			Category: core.NormalizeCategory(category),
			Distance: cosineDistance(query, other),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return rankNeighbors(neighbors, k), nil
}

// Stop closes the database connection
func (idx *SQLiteIndex) Stop() {
	if err := idx.db.Close(); err != nil {
		idx.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
