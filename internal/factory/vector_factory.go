package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-mail-triage/internal/adapters/vector"
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// VectorFactory creates vector indexes based on configuration
type VectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewVectorFactory creates a new vector factory
func NewVectorFactory(cfg *config.Config, logger *zap.Logger) *VectorFactory {
	return &VectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVectorIndex creates a vector index based on the configuration
func (f *VectorFactory) CreateVectorIndex() (core.VectorIndex, error) {
	vectorCfg := f.cfg.GetVector()

	switch vectorCfg.Type {
	case "memory":
		return vector.NewMemoryIndex(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(vectorCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return vector.NewSQLiteIndex(vectorCfg.SQLitePath, f.logger)
	case "mysql":
		return vector.NewMySQLIndex(vectorCfg.MySQLDSN, f.logger)
	case "postgres":
		embeddingCfg := f.cfg.GetEmbedding()
		return vector.NewPostgresIndex(context.Background(), vectorCfg.PostgresDSN, embeddingCfg.Dimensions, f.logger)
	default:
		return nil, fmt.Errorf("unsupported vector index type: %s", vectorCfg.Type)
	}
}
