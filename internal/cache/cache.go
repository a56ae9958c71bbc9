package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores upstream answers so repeated questions skip the provider call.
type Cache interface {
	// GetAnswer returns the cached answer and whether it was found.
	GetAnswer(ctx context.Context, key string) (string, bool, error)

	// SetAnswer stores an answer with TTL.
	SetAnswer(ctx context.Context, key, answer string, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Key derives a cache key from the model and the exact question sent upstream.
func Key(model, question string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + question))
	return hex.EncodeToString(sum[:])
}
