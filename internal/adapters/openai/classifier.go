package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Classifier is an implementation of the core.Classifier interface
// using OpenAI chat completions
type Classifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// classificationResponse represents the structured response from the
// model. Score is a pointer so a missing field can be told apart from
// an explicit zero and defaulted.
type classificationResponse struct {
	Category       string   `json:"category"`
	Priority       string   `json:"priority"`
	UrgencyScore   *float64 `json:"urgency_score"`
	Sentiment      string   `json:"sentiment"`
	RequiresAction bool     `json:"requires_action"`
	Reasoning      string   `json:"reasoning"`
}

// NewClassifier creates a new OpenAI classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	client := openai.NewClient(apiKey)

	return &Classifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `Analyze the following email and provide classification:

Subject: %s
From: %s
Body: %s

Provide the following classifications:
1. Category (work, personal, marketing, support, finance, other)
2. Priority (urgent, high, medium, low)
3. Urgency Score (0.0 to 1.0)
4. Sentiment (positive, neutral, negative)
5. Requires Action (true/false)
6. Reasoning (brief explanation)

Respond with a JSON object using the keys category, priority,
urgency_score, sentiment, requires_action and reasoning, and nothing else.`,
	}
}

// Classify produces a raw classification for a message
func (c *Classifier) Classify(ctx context.Context, subject, body, sender string) (*core.Classification, error) {
	// The body is bounded before it reaches the model
	processedBody := c.textProcessor.ProcessText(body, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, subject, sender, processedBody)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email classification expert. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	cls, err := parseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenAI classification received",
		zap.String("model", c.modelName),
		zap.String("category", string(cls.Category)),
		zap.String("priority", string(cls.Priority)))

	return cls, nil
}

// parseClassification decodes the model's JSON reply into a normalized
// classification, substituting defaults for any missing field. Replies
// with text around the JSON object are salvaged by extracting the
// outermost braces.
func parseClassification(responseText string) (*core.Classification, error) {
	var cr classificationResponse
	if err := json.Unmarshal([]byte(responseText), &cr); err != nil {
		jsonStr, ok := extractJSON(responseText)
		if !ok {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &cr); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	urgency := 0.5
	if cr.UrgencyScore != nil {
		urgency = *cr.UrgencyScore
	}

	cls := &core.Classification{
		Category:       core.NormalizeCategory(cr.Category),
		Priority:       core.NormalizePriority(cr.Priority),
		UrgencyScore:   urgency,
		Sentiment:      core.NormalizeSentiment(cr.Sentiment),
		RequiresAction: cr.RequiresAction,
		Reasoning:      cr.Reasoning,
	}
	cls.Normalize()
	return cls, nil
}

// extractJSON returns the substring between the first '{' and the last
// '}' of the text, if any
func extractJSON(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}

	end := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			end = i + 1
			break
		}
	}

	if start < 0 || end <= start {
		return "", false
	}
	return text[start:end], true
}
