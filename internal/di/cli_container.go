package di

import (
	"flag"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/factory"
	"github.com/mikey/llm-mail-triage/internal/logging"
	"github.com/mikey/llm-mail-triage/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Embedding flags
	EmbeddingModel      string
	EmbeddingDimensions int

	// Vector index flags
	VectorType  string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
	SimilarK    int

	// Review gating flags
	ReviewThreshold float64

	// Input flags
	InputFile  string
	PrefsFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "openai", "LLM provider (openai, bedrock, gemini)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.3, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 1000, "Maximum message body size to send to LLM")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4-turbo-preview", "OpenAI model name")

	// Embedding flags
	flag.StringVar(&flags.EmbeddingModel, "embedding-model", "text-embedding-3-small", "OpenAI embedding model name")
	flag.IntVar(&flags.EmbeddingDimensions, "embedding-dimensions", 1536, "Embedding vector dimensions")

	// Vector index flags
	flag.StringVar(&flags.VectorType, "vector", "memory", "Vector index type (memory, sqlite, mysql, postgres)")
	flag.StringVar(&flags.SQLitePath, "sqlite-path", "data/vectors.db", "Path to SQLite vector database")
	flag.StringVar(&flags.MySQLDSN, "mysql-dsn", "", "MySQL DSN for vector index")
	flag.StringVar(&flags.PostgresDSN, "postgres-dsn", "", "Postgres DSN for vector index (pgvector)")
	flag.IntVar(&flags.SimilarK, "similar-k", 5, "Number of similar messages to retrieve")

	// Review gating flags
	flag.Float64Var(&flags.ReviewThreshold, "review-threshold", 0.6, "Confidence below this flags the message for human review")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input message file (use stdin if not specified)")
	flag.StringVar(&flags.PrefsFile, "prefs", "", "Path to user preferences file (allow/deny lists and rules)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		if flags.ConfigFile != "" {
			return config.New()
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register logger. Config-file runs use the configured logger,
	// flag-only runs use the console logger.
	if err := container.Provide(func(flags *CLIFlags, cfg *config.Config) (*zap.Logger, error) {
		if flags.ConfigFile != "" {
			return logging.InitLogger(cfg)
		}
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewVectorFactory); err != nil {
		return nil, err
	}

	// Register classifier and embedder
	if err := container.Provide(func(f *factory.LLMFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.Embedder, error) {
		return f.CreateEmbedder()
	}); err != nil {
		return nil, err
	}

	// Register vector index
	if err := container.Provide(func(f *factory.VectorFactory) (core.VectorIndex, error) {
		return f.CreateVectorIndex()
	}); err != nil {
		return nil, err
	}

	// Register rule engine and confidence estimator
	if err := container.Provide(core.NewRuleEngine); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.ConfidenceEstimator {
		return core.NewConfidenceEstimator(cfg.GetTriage().ReviewThreshold)
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		classifier core.Classifier,
		embedder core.Embedder,
		index core.VectorIndex,
		rules *core.RuleEngine,
		estimator *core.ConfidenceEstimator,
		logger *zap.Logger,
		cfg *config.Config,
	) (*core.TriageService, error) {
		llmTimeout, err := cfg.GetDuration("llm.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid llm timeout: %w", err)
		}
		vectorTimeout, err := cfg.GetDuration("vector.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid vector timeout: %w", err)
		}
		triageCfg := cfg.GetTriage()
		return core.NewTriageService(
			classifier,
			embedder,
			index,
			rules,
			estimator,
			logger,
			llmTimeout,
			vectorTimeout,
			triageCfg.MaxBodySize,
			triageCfg.SimilarK,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("cli.verbose", flags.Verbose)

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	}

	// Embeddings always come from the OpenAI endpoint
	v.Set("openai.api_key", flags.OpenAIAPIKey)
	v.Set("embedding.model_name", flags.EmbeddingModel)
	v.Set("embedding.dimensions", flags.EmbeddingDimensions)
	v.Set("embedding.max_chars", flags.MaxBodySize)

	// Set vector index configuration
	v.Set("vector.type", flags.VectorType)
	v.Set("vector.sqlite_path", flags.SQLitePath)
	v.Set("vector.mysql_dsn", flags.MySQLDSN)
	v.Set("vector.postgres_dsn", flags.PostgresDSN)

	// Set triage configuration
	v.Set("triage.max_body_size", flags.MaxBodySize)
	v.Set("triage.similar_k", flags.SimilarK)
	v.Set("triage.review_threshold", flags.ReviewThreshold)

	return config.NewFromViper(v)
}
