package openai

import (
	"context"

	"github.com/mikey/llm-mail-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder is an implementation of the core.Embedder interface using
// the OpenAI embeddings endpoint
type Embedder struct {
	client        *openai.Client
	modelName     string
	dimensions    int
	maxChars      int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewEmbedder creates a new OpenAI embedder
func NewEmbedder(
	apiKey string,
	modelName string,
	dimensions int,
	maxChars int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Embedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &Embedder{
		client:        openai.NewClient(apiKey),
		modelName:     modelName,
		dimensions:    dimensions,
		maxChars:      maxChars,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Embed vectorizes text. On any failure it returns an all-zero vector
// of the configured length so downstream code can always index into
// the result.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	processed := e.textProcessor.ProcessText(text, e.maxChars)

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.modelName),
		Input: []string{processed},
	})
	if err != nil {
		e.logger.Warn("Embedding request failed, returning zero vector", zap.Error(err))
		return make([]float32, e.dimensions), nil
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.logger.Warn("Embedding response was empty, returning zero vector")
		return make([]float32, e.dimensions), nil
	}

	return resp.Data[0].Embedding, nil
}
