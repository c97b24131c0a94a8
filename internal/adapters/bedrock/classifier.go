package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/utils"
	"go.uber.org/zap"
)

// Classifier is an implementation of the core.Classifier interface
// using Amazon Bedrock
type Classifier struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewClassifier creates a new Bedrock classifier
func NewClassifier(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelID:       modelID,
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
	processedBody := c.textProcessor.ProcessText(body, c.maxBodySize)

	prompt := fmt.Sprintf(c.promptFormat, subject, sender, processedBody)

	// Build the request payload for the model family
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractResponseText(resp.Body)
	if err != nil {
		return nil, err
	}

	cls, err := parseClassification(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock classification received",
		zap.String("model", c.modelID),
		zap.String("category", string(cls.Category)),
		zap.String("priority", string(cls.Priority)))

	return cls, nil
}

// extractResponseText pulls the generated text out of the
// model-family-specific response envelope
func (c *Classifier) extractResponseText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	// Generic fallback: try the common field names, then the raw body
	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	if genericResp.Output != "" {
		return genericResp.Output, nil
	}
	if genericResp.Text != "" {
		return genericResp.Text, nil
	}
	if genericResp.Response != "" {
		return genericResp.Response, nil
	}
	return string(body), nil
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Classifier) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Classifier) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
