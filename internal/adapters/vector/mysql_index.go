package vector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLIndex is a MySQL implementation of the core.VectorIndex
// interface, the shared-database twin of SQLiteIndex. Embeddings are
// stored as JSON text and ranked in process.
type MySQLIndex struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLIndex creates a new MySQL vector index
func NewMySQLIndex(dsn string, logger *zap.Logger) (*MySQLIndex, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS message_vectors (
			message_id VARCHAR(255) PRIMARY KEY,
			category VARCHAR(50),
			embedding MEDIUMTEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLIndex{
		db:     db,
		logger: logger,
	}, nil
}

// Store attaches an embedding and category to a message id
func (idx *MySQLIndex) Store(ctx context.Context, id string, embedding []float32, category core.Category) error {
	encoded, err := encodeEmbedding(embedding)
	if err != nil {
		return err
	}

	_, err = idx.db.ExecContext(ctx, `
		INSERT INTO message_vectors (message_id, category, embedding)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE category = VALUES(category), embedding = VALUES(embedding)
	`, id, string(category), encoded)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}

// FindSimilar returns up to k nearest neighbors of the message with the
// given id. A query message that is unknown or has no embedding yields
// an empty result.
func (idx *MySQLIndex) FindSimilar(ctx context.Context, id string, k int) ([]core.Neighbor, error) {
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
func (idx *MySQLIndex) Stop() {
	if err := idx.db.Close(); err != nil {
		idx.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
