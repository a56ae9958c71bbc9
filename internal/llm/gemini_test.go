package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1beta/"})
	require.NoError(t, err)
	return c
}

func TestGeminiClientSendsSingleUserMessage(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody map[string]any

	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	_, err := c.Answer(context.Background(), "What is a nebula?")
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{
		"contents": []any{
			map[string]any{
				"role":  "user",
				"parts": []any{map[string]any{"text": "What is a nebula?"}},
			},
		},
	}, gotBody)
}

func TestGeminiClientAnswer(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "full path returns text verbatim",
			status: http.StatusOK,
			body:   `{"candidates":[{"content":{"role":"model","parts":[{"text":"  A nebula is a cloud of gas.\n"}]}}]}`,
			want:   "  A nebula is a cloud of gas.\n",
		},
		{
			name:   "only the first candidate and part are used",
			status: http.StatusOK,
			body:   `{"candidates":[{"content":{"parts":[{"text":"first"},{"text":"second"}]}},{"content":{"parts":[{"text":"other"}]}}]}`,
			want:   "first",
		},
		{name: "empty object", status: http.StatusOK, body: `{}`, want: FallbackAnswer},
		{name: "null body", status: http.StatusOK, body: `null`, want: FallbackAnswer},
		{name: "empty candidates", status: http.StatusOK, body: `{"candidates":[]}`, want: FallbackAnswer},
		{name: "missing content", status: http.StatusOK, body: `{"candidates":[{"finishReason":"SAFETY"}]}`, want: FallbackAnswer},
		{name: "null content", status: http.StatusOK, body: `{"candidates":[{"content":null}]}`, want: FallbackAnswer},
		{name: "missing parts", status: http.StatusOK, body: `{"candidates":[{"content":{"role":"model"}}]}`, want: FallbackAnswer},
		{name: "empty parts", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[]}}]}`, want: FallbackAnswer},
		{name: "part without text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, want: FallbackAnswer},
		{name: "non-string text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, want: FallbackAnswer},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500}}`, wantErr: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"API key not valid"}}`, wantErr: true},
		{name: "invalid json", status: http.StatusOK, body: `<html>oops</html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.Answer(context.Background(), "Tell me about a star")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUpstream))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiClientTransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := NewGeminiClient(GeminiConfig{APIKey: "super-secret", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Answer(context.Background(), "planet")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotContains(t, err.Error(), "super-secret")
}

func TestGeminiClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Answer(context.Background(), "orbit")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewGeminiClientDefaults(t *testing.T) {
	_, err := NewGeminiClient(GeminiConfig{})
	require.Error(t, err)

	c, err := NewGeminiClient(GeminiConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, c.Model())
	assert.Equal(t, DefaultGeminiBaseURL+"/models/gemini-2.0-flash:generateContent?key=k", c.endpoint())
}
