package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GenAIClient answers through the google.golang.org/genai SDK.
type GenAIClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIClient creates an SDK-backed client against the Gemini API backend.
func NewGenAIClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, model: model, timeout: timeout}, nil
}

func (c *GenAIClient) Answer(ctx context.Context, question string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil genai client")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	contents := []*genai.Content{
		genai.NewContentFromText(question, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return genaiAnswer(resp), nil
}

// genaiAnswer walks Candidates[0].Content.Parts[0].Text. The SDK models text as
// a plain string, so an empty first part counts as missing.
func genaiAnswer(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return FallbackAnswer
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return FallbackAnswer
	}
	part := cand.Content.Parts[0]
	if part == nil || part.Text == "" {
		return FallbackAnswer
	}
	return part.Text
}
