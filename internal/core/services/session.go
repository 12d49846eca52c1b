package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// Selection identifies what a consumer is currently looking at. Fetches
// are tagged with the selection that triggered them.
type Selection struct {
	QueryID     int64
	From        time.Time
	To          time.Time
	Granularity domain.Granularity
}

// Equal compares selections by instant rather than by time.Time identity.
func (s Selection) Equal(other Selection) bool {
	return s.QueryID == other.QueryID &&
		s.From.Equal(other.From) &&
		s.To.Equal(other.To) &&
		s.Granularity == other.Granularity
}

// Session guards against stale responses. In-flight fetches are not
// cancelled when the selection changes; their results are dropped on
// arrival instead.
type Session struct {
	mu      sync.RWMutex
	current Selection
}

// NewSession creates a session showing initial.
func NewSession(initial Selection) *Session {
	return &Session{current: initial}
}

// Select makes sel current and returns it as the tag for the fetch it
// triggers.
func (s *Session) Select(sel Selection) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sel
	return sel
}

// Current returns the current selection.
func (s *Session) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Accept reports whether a response tagged with tag may be applied.
func (s *Session) Accept(tag Selection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tag.Equal(s.current)
}
