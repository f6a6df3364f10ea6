// Package gemini provides a client for Google's Gemini AI API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// Client represents a Gemini API client.
type Client struct {
	apiKey string
	model  string
}

// NewClient creates a new Gemini API client.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{apiKey: apiKey, model: model}
}

// Generate produces a natural-language completion for prompt. Successful
// completions are cached keyed on model and prompt, so identical analysis
// requests do not re-bill.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int32, cache CacheInterface, logger Logger) (string, error) {
	cacheKey := fmt.Sprintf("genai:%s", c.model)
	if cache != nil {
		if cached, found := cache.APICall(cacheKey, []byte(prompt)); found {
			logger.Debug("Gemini cache hit", "length", len(cached))
			return string(cached), nil
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	modelName := strings.TrimPrefix(c.model, "models/")
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	temperature := float32(0.4)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			var genErr error
			resp, genErr = client.Models.GenerateContent(ctx, modelName, contents, genConfig)
			if genErr != nil {
				if isTransient(genErr) {
					logger.Warn("Gemini API transient error, retrying", "error", genErr)
					return genErr
				}
				logger.Error("Gemini API non-transient error", "error", genErr)
				return retry.Unrecoverable(genErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying Gemini API call", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed after retries: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}

	if cache != nil {
		if err := cache.SetAPICall(cacheKey, []byte(prompt), []byte(text)); err != nil {
			logger.Debug("failed to cache Gemini response", "error", err)
		}
	}

	return text, nil
}

func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporary failure") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "500")
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return strings.TrimSpace(part.Text), nil
		}
	}
	return "", fmt.Errorf("no text in Gemini response")
}
