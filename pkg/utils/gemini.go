package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type RecommendClientInterface interface {
	// GenerateCandidateJSON sends one prompt and returns the raw model
	// text. grounded selects the paid search-augmented path; callers
	// downgrade it when the daily quota is spent.
	GenerateCandidateJSON(ctx context.Context, prompt string, grounded bool) (string, error)
}

type GeminiRecommendClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiRecommendClient returns a client even when the API key is
// absent; the missing key surfaces as ErrMissingAPIKey on first use so
// the pipeline can abort the run with its typed fatal error.
func NewGeminiRecommendClient(apiKey, model string) (RecommendClientInterface, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	c := &GeminiRecommendClient{model: model, timeout: 6 * time.Second}
	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiRecommendClient) GenerateCandidateJSON(ctx context.Context, prompt string, grounded bool) (string, error) {
	if c.client == nil {
		return "", ErrMissingAPIKey
	}

	m := c.client.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.2)
	m.SetTopP(0.5)
	m.SetTopK(20)
	m.SetMaxOutputTokens(4000)

	if grounded {
		m.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}
		// Grounded responses come back as plain text parts.
		m.ResponseMIMEType = ""
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := m.GenerateContent(ctxWithTimeout, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func (c *GeminiRecommendClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
