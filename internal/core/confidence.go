package core

const (
	baseConfidence       = 0.7
	rulesAppliedBoost    = 0.2
	similarityBoostScale = 0.1

	// DefaultReviewThreshold is the confidence below which a
	// classification is routed to human review
	DefaultReviewThreshold = 0.6
)

// ConfidenceEstimator derives a trust score for a final classification
// and decides whether a human must review it
type ConfidenceEstimator struct {
	reviewThreshold float64
}

// NewConfidenceEstimator creates a new confidence estimator. A
// non-positive threshold falls back to the default.
func NewConfidenceEstimator(reviewThreshold float64) *ConfidenceEstimator {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &ConfidenceEstimator{reviewThreshold: reviewThreshold}
}

// Score computes the confidence for a classification. rulesApplied
// means the rule engine was invoked, not that any rule actually fired;
// the distinction is kept behind this named parameter so the two can be
// separated later without silently changing the math.
func (e *ConfidenceEstimator) Score(cls *Classification, rulesApplied bool, similar []Neighbor) float64 {
	confidence := baseConfidence

	if rulesApplied {
		confidence += rulesAppliedBoost
	}

	if len(similar) > 0 {
		matching := 0
		for _, n := range similar {
			if n.Category == cls.Category {
				matching++
			}
		}
		confidence += float64(matching) / float64(len(similar)) * similarityBoostScale
	}

	return Clamp01(confidence)
}

// NeedsReview reports whether a score requires human review. The
// comparison is strict, so a score exactly at the threshold passes.
func (e *ConfidenceEstimator) NeedsReview(score float64) bool {
	return score < e.reviewThreshold
}
