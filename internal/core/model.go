package core

import (
	"strings"
	"time"
)

// Category is the closed set of message categories
type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryMarketing Category = "marketing"
	CategorySupport   Category = "support"
	CategoryFinance   Category = "finance"
	CategoryOther     Category = "other"
)

// NormalizeCategory coerces free-form input into the closed category set,
// defaulting to "other" for anything out of domain
func NormalizeCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryWork:
		return CategoryWork
	case CategoryPersonal:
		return CategoryPersonal
	case CategoryMarketing:
		return CategoryMarketing
	case CategorySupport:
		return CategorySupport
	case CategoryFinance:
		return CategoryFinance
	default:
		return CategoryOther
	}
}

// Priority is the closed ordered set of message priorities
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// NormalizePriority coerces free-form input into the closed priority set,
// defaulting to "medium" for anything out of domain
func NormalizePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityMedium:
		return PriorityMedium
	case PriorityHigh:
		return PriorityHigh
	case PriorityUrgent:
		return PriorityUrgent
	default:
		return PriorityMedium
	}
}

// Level returns the numeric rank of a priority (low=1 .. urgent=4).
// Unknown values rank as medium.
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 2
	}
}

// Sentiment is the closed set of message sentiments
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// NormalizeSentiment coerces free-form input into the closed sentiment set,
// defaulting to "neutral" for anything out of domain
func NormalizeSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Message represents an inbound mail message
type Message struct {
	ID          string
	SenderEmail string
	SenderName  string
	Subject     string
	BodyText    string
	BodyHTML    string
	ReceivedAt  time.Time
	Embedding   []float32
}

// Classification is the triage verdict for a message. Reasoning always
// describes the last rule or fallback that touched the classification.
type Classification struct {
	Category       Category
	Priority       Priority
	UrgencyScore   float64
	Sentiment      Sentiment
	RequiresAction bool
	Reasoning      string
}

// Normalize coerces every field back into its closed domain and clamps
// the urgency score to [0, 1]
func (c *Classification) Normalize() {
	c.Category = NormalizeCategory(string(c.Category))
	c.Priority = NormalizePriority(string(c.Priority))
	c.Sentiment = NormalizeSentiment(string(c.Sentiment))
	c.UrgencyScore = Clamp01(c.UrgencyScore)
}

// FallbackClassification returns the fixed safe-harbor classification
// used whenever the upstream model cannot be consulted
func FallbackClassification(reason string) *Classification {
	return &Classification{
		Category:       CategoryOther,
		Priority:       PriorityMedium,
		UrgencyScore:   0.5,
		Sentiment:      SentimentNeutral,
		RequiresAction: false,
		Reasoning:      reason,
	}
}

// CustomRule is a user-authored override. A rule matches a message iff
// every condition it declares holds; a rule that declares no conditions
// matches every message.
type CustomRule struct {
	SenderPattern   string   `mapstructure:"sender_pattern"`
	SubjectContains string   `mapstructure:"subject_contains"`
	Priority        Priority `mapstructure:"priority"`
	Category        Category `mapstructure:"category"`
}

// Preferences is a read-only per-user snapshot of triage overrides,
// loaded before the pipeline runs
type Preferences struct {
	AllowSenders []string     `mapstructure:"allow_senders"`
	DenySenders  []string     `mapstructure:"deny_senders"`
	Rules        []CustomRule `mapstructure:"rules"`
}

// Neighbor is a nearest-neighbor hit from the vector index
type Neighbor struct {
	ID       string
	Category Category
	Distance float64
}

// TriageResult is the sole output of the triage pipeline. It is
// ephemeral; the caller decides what to persist.
type TriageResult struct {
	Classification  *Classification
	Confidence      float64
	RequiresReview  bool
	SimilarMessages []string
}

// Clamp01 clamps v to the closed interval [0, 1]
func Clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
