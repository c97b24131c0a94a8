package core

import (
	"math"
	"testing"
)

func TestConfidenceScore(t *testing.T) {
	cls := &Classification{Category: CategoryWork}

	tests := []struct {
		name         string
		rulesApplied bool
		similar      []Neighbor
		want         float64
	}{
		{
			name:         "base only",
			rulesApplied: false,
			similar:      nil,
			want:         0.7,
		},
		{
			name:         "rules applied",
			rulesApplied: true,
			similar:      nil,
			want:         0.9,
		},
		{
			name:         "all neighbors agree",
			rulesApplied: true,
			similar: []Neighbor{
				{ID: "a", Category: CategoryWork},
				{ID: "b", Category: CategoryWork},
			},
			want: 1.0,
		},
		{
			name:         "two of three neighbors agree",
			rulesApplied: true,
			similar: []Neighbor{
				{ID: "a", Category: CategoryWork},
				{ID: "b", Category: CategoryWork},
				{ID: "c", Category: CategoryMarketing},
			},
			want: 0.9 + (2.0/3.0)*0.1,
		},
		{
			name:         "no neighbors agree",
			rulesApplied: true,
			similar: []Neighbor{
				{ID: "a", Category: CategoryMarketing},
			},
			want: 0.9,
		},
		{
			name:         "similarity without rules",
			rulesApplied: false,
			similar: []Neighbor{
				{ID: "a", Category: CategoryWork},
			},
			want: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimator := NewConfidenceEstimator(DefaultReviewThreshold)
			got := estimator.Score(cls, tt.rulesApplied, tt.similar)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceScoreIsClamped(t *testing.T) {
	estimator := NewConfidenceEstimator(DefaultReviewThreshold)
	cls := &Classification{Category: CategoryWork}
	similar := []Neighbor{
		{ID: "a", Category: CategoryWork},
		{ID: "b", Category: CategoryWork},
		{ID: "c", Category: CategoryWork},
	}

	got := estimator.Score(cls, true, similar)
	if got > 1.0 {
		t.Errorf("Score() = %v, want at most 1.0", got)
	}
	if got != 1.0 {
		t.Errorf("Score() = %v, want exactly 1.0", got)
	}
}

func TestNeedsReview(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		score     float64
		want      bool
	}{
		{"well below threshold", 0.6, 0.0, true},
		{"just below threshold", 0.6, 0.59999, true},
		{"exactly at threshold passes", 0.6, 0.6, false},
		{"above threshold", 0.6, 0.9, false},
		{"custom threshold", 0.8, 0.7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimator := NewConfidenceEstimator(tt.threshold)
			if got := estimator.NeedsReview(tt.score); got != tt.want {
				t.Errorf("NeedsReview(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestNewConfidenceEstimatorDefaultThreshold(t *testing.T) {
	estimator := NewConfidenceEstimator(0)
	if !estimator.NeedsReview(0.59) {
		t.Error("expected 0.59 to need review under the default threshold")
	}
	if estimator.NeedsReview(0.6) {
		t.Error("expected 0.6 to pass under the default threshold")
	}
}
