package driving

import "context"

// Scheduler runs the cache-warm task in the background of long-lived
// commands (serve, mcp serve, dashboard).
type Scheduler interface {
	// Start blocks until ctx is cancelled or Stop is called. Calling it on
	// a running scheduler returns immediately.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for an in-flight warm to finish.
	Stop() error
}
