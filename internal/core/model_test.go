package core

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"work", CategoryWork},
		{"  Finance ", CategoryFinance},
		{"SUPPORT", CategorySupport},
		{"spam", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"urgent", PriorityUrgent},
		{" High ", PriorityHigh},
		{"LOW", PriorityLow},
		{"whenever", PriorityMedium},
		{"", PriorityMedium},
	}

	for _, tt := range tests {
		if got := NormalizePriority(tt.in); got != tt.want {
			t.Errorf("NormalizePriority(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		in   string
		want Sentiment
	}{
		{"positive", SentimentPositive},
		{"Negative", SentimentNegative},
		{"mixed", SentimentNeutral},
		{"", SentimentNeutral},
	}

	for _, tt := range tests {
		if got := NormalizeSentiment(tt.in); got != tt.want {
			t.Errorf("NormalizeSentiment(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPriorityLevelOrdering(t *testing.T) {
	ordered := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Level() >= ordered[i].Level() {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
	if Priority("bogus").Level() != PriorityMedium.Level() {
		t.Error("unknown priority should rank as medium")
	}
}

func TestClassificationNormalize(t *testing.T) {
	cls := &Classification{
		Category:     "Billing",
		Priority:     "SOON",
		Sentiment:    "angry",
		UrgencyScore: 1.7,
	}
	cls.Normalize()

	if cls.Category != CategoryOther {
		t.Errorf("category = %s, want other", cls.Category)
	}
	if cls.Priority != PriorityMedium {
		t.Errorf("priority = %s, want medium", cls.Priority)
	}
	if cls.Sentiment != SentimentNeutral {
		t.Errorf("sentiment = %s, want neutral", cls.Sentiment)
	}
	if cls.UrgencyScore != 1.0 {
		t.Errorf("urgency score = %v, want 1.0", cls.UrgencyScore)
	}
}

func TestFallbackClassification(t *testing.T) {
	cls := FallbackClassification("upstream unavailable")

	if cls.Category != CategoryOther {
		t.Errorf("category = %s, want other", cls.Category)
	}
	if cls.Priority != PriorityMedium {
		t.Errorf("priority = %s, want medium", cls.Priority)
	}
	if cls.UrgencyScore != 0.5 {
		t.Errorf("urgency score = %v, want 0.5", cls.UrgencyScore)
	}
	if cls.Sentiment != SentimentNeutral {
		t.Errorf("sentiment = %s, want neutral", cls.Sentiment)
	}
	if cls.RequiresAction {
		t.Error("requires action should be false")
	}
	if cls.Reasoning != "upstream unavailable" {
		t.Errorf("reasoning = %q", cls.Reasoning)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0.0},
		{0.0, 0.0},
		{0.42, 0.42},
		{1.0, 1.0},
		{1.5, 1.0},
	}

	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
