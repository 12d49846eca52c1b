package driven

import "time"

// FetchObserver records the outcome of facade fetches.
type FetchObserver interface {
	// ObserveFetch records one fetch. outcome is "live", "fallback" or "error".
	ObserveFetch(operation, outcome string, elapsed time.Duration)
}
