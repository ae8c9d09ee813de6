package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which operation keys have already been
// handled, so a retried payment submission or redelivered event applies
// once.
type IdempotencyStore interface {
	// MarkProcessed atomically claims key for ttl. True means this
	// caller won the claim; false means the key was already handled.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key holds an unexpired claim.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes duplicate suppression.
type IdempotencyConfig struct {
	// TTL bounds how long a key stays claimed; after it lapses the same
	// key may be processed again.
	TTL time.Duration

	// Enabled turns suppression off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig claims keys for 24 hours.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
