package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultGeminiBaseURL is the public Generative Language API root.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.0-flash"

	answerPath       = "candidates.0.content.parts.0.text"
	maxResponseBytes = 10 << 20
)

// GeminiConfig configures the REST client.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single generateContent call. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiClient calls the generateContent REST endpoint directly.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

// NewGeminiClient builds a client, filling in the public endpoint and default model.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}, nil
}

// Model reports the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Answer sends the question as a single user message and returns the first
// candidate's text, or FallbackAnswer when the response has none.
func (c *GeminiClient) Answer(ctx context.Context, question string) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", fmt.Errorf("nil gemini client")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(newGenerateContentRequest(question))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, redactKey(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(data))
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: response is not valid JSON", ErrUpstream)
	}
	return extractAnswer(data), nil
}

func (c *GeminiClient) endpoint() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, url.PathEscape(c.model), q.Encode())
}

func newGenerateContentRequest(question string) generateContentRequest {
	return generateContentRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: question}}},
		},
	}
}

// extractAnswer reads candidates[0].content.parts[0].text. Any missing link,
// or a non-string leaf, yields FallbackAnswer.
func extractAnswer(body []byte) string {
	res := gjson.GetBytes(body, answerPath)
	if !res.Exists() || res.Type != gjson.String {
		return FallbackAnswer
	}
	return res.Str
}

// redactKey strips the query string from URL errors so the API key never reaches logs.
func redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
		return &url.Error{Op: ue.Op, URL: "[redacted]", Err: ue.Err}
	}
	return err
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
