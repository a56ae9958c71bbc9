package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how an ask was resolved.
type Outcome string

const (
	OutcomeRejected Outcome = "rejected"
	OutcomeAnswered Outcome = "answered"
	OutcomeCached   Outcome = "cached"
	OutcomeFailed   Outcome = "failed"
)

// Entry is one recorded ask.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Keywords  []string  `json:"keywords"`
	Answer    string    `json:"answer,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// Store records asks and lists the most recent ones.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NoOpStore is used when history is disabled.
type NoOpStore struct{}

func (NoOpStore) Record(context.Context, Entry) error { return nil }

func (NoOpStore) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

func (NoOpStore) Close() error { return nil }
