package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultOpenAIModel    = "gpt-4o-mini"

	openAIChatCompletionsURL = "https://api.openai.com/v1/chat/completions"
)

const sentimentSystemPrompt = `You are a sentiment analyzer for Persian (Farsi) chat messages.
Classify the emotional tone of the user's message.

Respond with ONLY a JSON object, no markdown, no explanations:
{"label": "HAPPY" | "SAD" | "NEUTRAL", "score": <confidence between 0.0 and 1.0>}`

// RawClassification is the provider's verdict before label mapping.
type RawClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Classifier interface {
	Classify(ctx context.Context, text string) (RawClassification, error)
}

func NewClassifier(cfg Config) Classifier {
	if cfg.LLMProvider == "openai" {
		return openaiClassifier{
			apiKey:  cfg.OpenAIAPIKey,
			model:   cfg.LLMModel,
			baseURL: openAIChatCompletionsURL,
		}
	}
	return anthropicClassifier{apiKey: cfg.AnthropicAPIKey, model: cfg.LLMModel}
}

// ClassifyMessage normalizes rawText and runs it through the classifier.
// Anything that prevents a verdict (nothing left after normalization,
// provider failure, out-of-range score) comes back as SentimentError with
// score 0 so the message still lands in the store. The normalized text is
// returned for persistence.
func ClassifyMessage(ctx context.Context, clf Classifier, labels map[string]Sentiment, rawText string) (Sentiment, float64, string) {
	text := NormalizeText(rawText)
	if text == "" {
		return SentimentError, 0, text
	}

	raw, err := clf.Classify(ctx, text)
	if err != nil {
		log.Printf("classification error: %v", err)
		return SentimentError, 0, text
	}
	if raw.Score < 0 || raw.Score > 1 {
		log.Printf("classification score out of range: %.4f", raw.Score)
		return SentimentError, 0, text
	}

	sentiment, ok := labels[strings.ToUpper(strings.TrimSpace(raw.Label))]
	if !ok {
		sentiment = SentimentNeutral
	}
	return sentiment, raw.Score, text
}

func parseClassifierResponse(responseText string) (RawClassification, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var raw RawClassification
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return RawClassification{}, fmt.Errorf("parsing classifier response: %w (response: %s)", err, responseText)
	}
	if strings.TrimSpace(raw.Label) == "" {
		return RawClassification{}, fmt.Errorf("classifier response missing label (response: %s)", responseText)
	}
	return raw, nil
}

// --- Anthropic ---

type anthropicClassifier struct {
	apiKey string
	model  string
}

func (c anthropicClassifier) Classify(ctx context.Context, text string) (RawClassification, error) {
	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: sentimentSystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return RawClassification{}, fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("classifier anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return parseClassifierResponse(block.Text)
		}
	}
	return RawClassification{}, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openaiClassifier struct {
	apiKey  string
	model   string
	baseURL string
}

func (c openaiClassifier) Classify(ctx context.Context, text string) (RawClassification, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: sentimentSystemPrompt},
			{Role: "user", Content: text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return RawClassification{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return RawClassification{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return RawClassification{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawClassification{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return RawClassification{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		return RawClassification{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return RawClassification{}, fmt.Errorf("no choices in OpenAI response")
	}

	content := openAIResp.Choices[0].Message.Content
	if openAIResp.Usage != nil {
		log.Printf("classifier openai response size=%d tokens_in=%d tokens_out=%d", len(content), openAIResp.Usage.PromptTokens, openAIResp.Usage.CompletionTokens)
	}
	return parseClassifierResponse(content)
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
