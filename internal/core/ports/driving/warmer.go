package driving

import "context"

// CacheWarmer recomputes cached results ahead of reads.
type CacheWarmer interface {
	// WarmCaches refreshes cached results and returns the number of
	// queries processed.
	WarmCaches(ctx context.Context) (int, error)
}
