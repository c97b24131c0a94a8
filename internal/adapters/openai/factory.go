package openai

import (
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates OpenAI adapters
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new OpenAI factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new OpenAI classifier from configuration
func (f *Factory) CreateClassifier() (*Classifier, error) {
	openaiCfg := f.cfg.GetOpenAI()

	return NewClassifier(
		openaiCfg.APIKey,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

// CreateEmbedder creates a new OpenAI embedder from configuration
func (f *Factory) CreateEmbedder() (*Embedder, error) {
	openaiCfg := f.cfg.GetOpenAI()
	embeddingCfg := f.cfg.GetEmbedding()

	return NewEmbedder(
		openaiCfg.APIKey,
		embeddingCfg.ModelName,
		embeddingCfg.Dimensions,
		embeddingCfg.MaxChars,
		f.logger,
		f.textProcessor,
	), nil
}
