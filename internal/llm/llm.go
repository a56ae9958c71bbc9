package llm

import (
	"context"
	"errors"
)

// FallbackAnswer is returned when the upstream response carries no answer text.
const FallbackAnswer = "No answer from Gemini."

// ErrUpstream marks transport, status and decoding failures talking to the provider.
var ErrUpstream = errors.New("upstream request failed")

// Client answers a single user question. Implementations never retry.
type Client interface {
	Answer(ctx context.Context, question string) (string, error)
}
