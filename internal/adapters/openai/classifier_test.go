package openai

import (
	"strings"
	"testing"

	"github.com/mikey/llm-mail-triage/internal/core"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    core.Classification
		wantErr bool
	}{
		{
			name: "clean json",
			input: `{"category":"work","priority":"high","urgency_score":0.8,
				"sentiment":"negative","requires_action":true,"reasoning":"outage report"}`,
			want: core.Classification{
				Category:       core.CategoryWork,
				Priority:       core.PriorityHigh,
				UrgencyScore:   0.8,
				Sentiment:      core.SentimentNegative,
				RequiresAction: true,
				Reasoning:      "outage report",
			},
		},
		{
			name:  "json wrapped in prose",
			input: "Here is the classification:\n{\"category\":\"finance\",\"priority\":\"low\"}\nHope that helps!",
			want: core.Classification{
				Category:     core.CategoryFinance,
				Priority:     core.PriorityLow,
				UrgencyScore: 0.5,
				Sentiment:    core.SentimentNeutral,
			},
		},
		{
			name:  "missing urgency score defaults",
			input: `{"category":"support","priority":"medium"}`,
			want: core.Classification{
				Category:     core.CategorySupport,
				Priority:     core.PriorityMedium,
				UrgencyScore: 0.5,
				Sentiment:    core.SentimentNeutral,
			},
		},
		{
			name:  "explicit zero urgency is kept",
			input: `{"category":"marketing","priority":"low","urgency_score":0.0}`,
			want: core.Classification{
				Category:     core.CategoryMarketing,
				Priority:     core.PriorityLow,
				UrgencyScore: 0.0,
				Sentiment:    core.SentimentNeutral,
			},
		},
		{
			name:  "out-of-domain values are coerced",
			input: `{"category":"gossip","priority":"whenever","urgency_score":3.5,"sentiment":"furious"}`,
			want: core.Classification{
				Category:     core.CategoryOther,
				Priority:     core.PriorityMedium,
				UrgencyScore: 1.0,
				Sentiment:    core.SentimentNeutral,
			},
		},
		{
			name:    "no json at all",
			input:   "I cannot classify this message.",
			wantErr: true,
		},
		{
			name:    "braces but not json",
			input:   "{this is not json}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClassification: %v", err)
			}
			if *got != tt.want {
				t.Errorf("parseClassification = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{`prefix {"a":1} suffix`, `{"a":1}`, true},
		{`{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"no braces here", "", false},
		{"} reversed {", "", false},
	}

	for _, tt := range tests {
		got, ok := extractJSON(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("extractJSON(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClassifierPromptFormat(t *testing.T) {
	c := NewClassifier("", "gpt-4-turbo-preview", 0, 0, 0, 0, nil, nil)
	for _, field := range []string{"Subject: %s", "From: %s", "Body: %s", "urgency_score", "requires_action"} {
		if !strings.Contains(c.promptFormat, field) {
			t.Errorf("prompt format missing %q", field)
		}
	}
}
