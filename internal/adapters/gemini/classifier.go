package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier is an implementation of the core.Classifier interface
// using Google Gemini
type Classifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// classificationResponse represents the structured response from the model
type classificationResponse struct {
	Category       string   `json:"category"`
	Priority       string   `json:"priority"`
	UrgencyScore   *float64 `json:"urgency_score"`
	Sentiment      string   `json:"sentiment"`
	RequiresAction bool     `json:"requires_action"`
	Reasoning      string   `json:"reasoning"`
}

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Classifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Classifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are an email classification expert. Analyze the following email and provide classification:

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
	}, nil
}

// Close closes the Gemini client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify produces a raw classification for a message
func (c *Classifier) Classify(ctx context.Context, subject, body, sender string) (*core.Classification, error) {
	processedBody := c.textProcessor.ProcessText(body, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, subject, sender, processedBody)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	cls, err := parseClassification(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini classification received",
		zap.String("model", c.modelName),
		zap.String("category", string(cls.Category)),
		zap.String("priority", string(cls.Priority)))

	return cls, nil
}

// parseClassification decodes the model's JSON reply into a normalized
// classification, substituting defaults for any missing field
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
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
