package cache

import (
	"context"
	"time"
)

// CounterStore counts events per key within a fixed time window. It backs
// the HTTP rate limiting middleware; the Redis implementation shares state
// across instances, the in-memory one is for single-node and test setups.
type CounterStore interface {
	// Increment bumps the counter for key and returns the new count. The
	// counter resets when the window elapses.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Close() error
}
