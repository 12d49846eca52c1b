package driven

import (
	"context"
	"time"
)

// ResultCache stores encoded computation results with a time-to-live.
type ResultCache interface {
	// Get returns the cached value. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
