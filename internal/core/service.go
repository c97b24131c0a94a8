package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TriageService is the core triage pipeline. Each invocation is
// independent and safe to run concurrently with others; the service
// itself holds no per-message state.
type TriageService struct {
	classifier  Classifier
	embedder    Embedder
	index       VectorIndex
	rules       *RuleEngine
	estimator   *ConfidenceEstimator
	logger      *zap.Logger
	llmTimeout  time.Duration
	idxTimeout  time.Duration
	maxBodySize int
	similarK    int
}

// NewTriageService creates a new triage service
func NewTriageService(
	classifier Classifier,
	embedder Embedder,
	index VectorIndex,
	rules *RuleEngine,
	estimator *ConfidenceEstimator,
	logger *zap.Logger,
	llmTimeout time.Duration,
	idxTimeout time.Duration,
	maxBodySize int,
	similarK int,
) *TriageService {
	if maxBodySize <= 0 {
		maxBodySize = 1000
	}
	if similarK <= 0 {
		similarK = 5
	}
	return &TriageService{
		classifier:  classifier,
		embedder:    embedder,
		index:       index,
		rules:       rules,
		estimator:   estimator,
		logger:      logger,
		llmTimeout:  llmTimeout,
		idxTimeout:  idxTimeout,
		maxBodySize: maxBodySize,
		similarK:    similarK,
	}
}

// Process runs the full triage pipeline for one message. It never
// fails: any unrecoverable error inside the pipeline collapses into a
// fixed safe-harbor result with the cause recorded in the reasoning.
func (s *TriageService) Process(ctx context.Context, msg *Message, prefs *Preferences) *TriageResult {
	result, err := s.run(ctx, msg, prefs)
	if err != nil {
		s.logger.Error("Triage pipeline failed, returning safe-harbor result",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return &TriageResult{
			Classification:  FallbackClassification(fmt.Sprintf("Processing failed: %v", err)),
			Confidence:      0.0,
			RequiresReview:  true,
			SimilarMessages: []string{},
		}
	}
	return result
}

func (s *TriageService) run(ctx context.Context, msg *Message, prefs *Preferences) (result *TriageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	// Step 1: upstream model classification
	cls, err := s.classify(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Step 2: deterministic user rules. The engine is always marked as
	// applied once this stage runs, whether or not any rule fired; the
	// confidence formula keys off that flag.
	cls = s.rules.Apply(msg, cls, prefs)
	rulesApplied := true

	// Step 3: embed and attach. The embedding write must land before
	// the similarity lookup that depends on it.
	embedding, err := s.embed(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.Embedding = embedding

	// Step 4: nearest neighbors. An unreachable index degrades to an
	// empty neighbor set instead of aborting the run.
	similar := s.findSimilar(ctx, msg, cls)

	// Step 5: confidence and review decision
	confidence := s.estimator.Score(cls, rulesApplied, similar)
	requiresReview := s.estimator.NeedsReview(confidence)

	ids := make([]string, 0, len(similar))
	for _, n := range similar {
		ids = append(ids, n.ID)
	}

	s.logger.Info("Message triaged",
		zap.String("message_id", msg.ID),
		zap.String("category", string(cls.Category)),
		zap.String("priority", string(cls.Priority)),
		zap.Float64("confidence", confidence),
		zap.Bool("requires_review", requiresReview),
		zap.Int("similar", len(ids)))

	return &TriageResult{
		Classification:  cls,
		Confidence:      confidence,
		RequiresReview:  requiresReview,
		SimilarMessages: ids,
	}, nil
}

func (s *TriageService) classify(ctx context.Context, msg *Message) (*Classification, error) {
	cctx, cancel := s.withTimeout(ctx, s.llmTimeout)
	defer cancel()

	cls, err := s.classifier.Classify(cctx, msg.Subject, msg.BodyText, msg.SenderEmail)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	cls.Normalize()
	return cls, nil
}

func (s *TriageService) embed(ctx context.Context, msg *Message) ([]float32, error) {
	ectx, cancel := s.withTimeout(ctx, s.llmTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(ectx, s.embeddingText(msg))
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	return embedding, nil
}

func (s *TriageService) findSimilar(ctx context.Context, msg *Message, cls *Classification) []Neighbor {
	ictx, cancel := s.withTimeout(ctx, s.idxTimeout)
	defer cancel()

	if err := s.index.Store(ictx, msg.ID, msg.Embedding, cls.Category); err != nil {
		s.logger.Warn("Failed to store embedding, continuing without similarity signal",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil
	}

	similar, err := s.index.FindSimilar(ictx, msg.ID, s.similarK)
	if err != nil {
		s.logger.Warn("Similarity lookup failed, continuing without similarity signal",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil
	}
	return similar
}

// embeddingText combines the subject with a bounded body prefix. Long
// bodies lose only trailing content for similarity purposes.
func (s *TriageService) embeddingText(msg *Message) string {
	body := msg.BodyText
	if len(body) > s.maxBodySize {
		body = body[:s.maxBodySize]
	}
	return msg.Subject + " " + body
}

func (s *TriageService) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
