package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"astro-relay/internal/retry"
)

// Event describes one resolved ask. It is published as JSON.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Outcome    string    `json:"outcome"`
	Question   string    `json:"question"`
	Keywords   []string  `json:"keywords,omitempty"`
	AnswerSize int       `json:"answer_size"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher exposes a minimal contract to emit ask events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, event Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, event); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base, time.Second)):
		}
	}
	return nil
}

// NoOpPublisher drops every event.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(context.Context, Event) error { return nil }

func (NoOpPublisher) Close() error { return nil }
