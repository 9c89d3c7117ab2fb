package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a processed message id is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers processed keys (inbound channel message ids)
// so a redelivered message is not acted on twice.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns true when key was not
	// already recorded; at most one concurrent caller wins for the same key.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}
