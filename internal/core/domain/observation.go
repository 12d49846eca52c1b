package domain

import (
	"sort"
	"strings"
	"time"
)

// Platform identifies an AI-answer surface.
type Platform string

// Monitored platforms.
const (
	PlatformChatGPT    Platform = "chatgpt"
	PlatformPerplexity Platform = "perplexity"
	PlatformGoogleAI   Platform = "google_ai"
)

// IsValid returns true if the platform is recognised.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformChatGPT, PlatformPerplexity, PlatformGoogleAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Platform) String() string {
	return string(p)
}

// Description returns a human-readable platform name.
func (p Platform) Description() string {
	switch p {
	case PlatformChatGPT:
		return "ChatGPT"
	case PlatformPerplexity:
		return "Perplexity"
	case PlatformGoogleAI:
		return "Google AI Overview"
	default:
		return "Unknown"
	}
}

// AllPlatforms returns every monitored platform in display order.
func AllPlatforms() []Platform {
	return []Platform{PlatformChatGPT, PlatformPerplexity, PlatformGoogleAI}
}

// RankAbsent is the rank position recorded when a brand is not in the answer.
const RankAbsent = 0

// RankObservation is one timestamped record of a brand's position on one
// platform's answer to one query. Observations are immutable once stored.
type RankObservation struct {
	// ID is assigned by the store; higher IDs were written later.
	ID int64

	// QueryID links to the VisibilityQuery.
	QueryID int64

	// Platform is the answer surface observed.
	Platform Platform

	// Brand is the tracked brand this observation is about.
	Brand string

	// RankPosition is 1-based; RankAbsent means not mentioned.
	RankPosition int

	// Snippet is the supporting text around the mention.
	Snippet string

	// SourceURLs are the citations shown alongside the answer.
	SourceURLs []string

	// SnapshotID is the content address of the raw answer snapshot.
	SnapshotID string

	// ScrapedAt is when the answer was captured.
	ScrapedAt time.Time

	// SourceRunID identifies the upstream run that produced the observation.
	SourceRunID string
}

// Key returns the (platform, brand) identity used by the latest projection.
func (o *RankObservation) Key() ObservationKey {
	return ObservationKey{Platform: o.Platform, Brand: o.Brand}
}

// Present reports whether the brand appeared in the answer.
func (o *RankObservation) Present() bool {
	return o.RankPosition > RankAbsent
}

// Supersedes reports whether o is later than other under the latest rule:
// higher ScrapedAt wins, equal timestamps resolved by higher ID.
func (o *RankObservation) Supersedes(other *RankObservation) bool {
	if o.ScrapedAt.Equal(other.ScrapedAt) {
		return o.ID > other.ID
	}
	return o.ScrapedAt.After(other.ScrapedAt)
}

// Validate checks the observation's own fields.
func (o *RankObservation) Validate() error {
	if o.QueryID <= 0 {
		return NewValidationError("query_id", "must be positive")
	}
	if !o.Platform.IsValid() {
		return NewValidationError("platform", "unknown platform "+o.Platform.String())
	}
	if strings.TrimSpace(o.Brand) == "" {
		return NewValidationError("brand", "must not be empty")
	}
	if o.RankPosition < RankAbsent {
		return NewValidationError("rank_position", "must be >= 0")
	}
	if o.ScrapedAt.IsZero() {
		return NewValidationError("scraped_at", "is required")
	}
	return nil
}

// ObservationKey identifies a (platform, brand) series within one query.
type ObservationKey struct {
	Platform Platform
	Brand    string
}

// ObservationFilter narrows an observation listing. Zero values are not
// applied. From is inclusive and To is exclusive.
type ObservationFilter struct {
	QueryID  int64
	Platform Platform
	Brand    string
	From     time.Time
	To       time.Time
}

// Validate rejects unknown platforms and inverted windows.
func (f ObservationFilter) Validate() error {
	if f.QueryID < 0 {
		return NewValidationError("query_id", "must be positive")
	}
	if f.Platform != "" && !f.Platform.IsValid() {
		return NewValidationError("platform", "unknown platform "+f.Platform.String())
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return NewValidationError("from", "must be before to")
	}
	return nil
}

// Matches reports whether o satisfies every set filter field.
func (f ObservationFilter) Matches(o *RankObservation) bool {
	if f.QueryID != 0 && o.QueryID != f.QueryID {
		return false
	}
	if f.Platform != "" && o.Platform != f.Platform {
		return false
	}
	if f.Brand != "" && o.Brand != f.Brand {
		return false
	}
	if !f.From.IsZero() && o.ScrapedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.ScrapedAt.Before(f.To) {
		return false
	}
	return true
}

// LatestByKey reduces observations to one per (platform, brand), keeping the
// superseding one. The result is ordered by platform then brand.
func LatestByKey(observations []RankObservation) []RankObservation {
	latest := make(map[ObservationKey]int, len(observations))
	for i := range observations {
		key := observations[i].Key()
		if j, ok := latest[key]; !ok || observations[i].Supersedes(&observations[j]) {
			latest[key] = i
		}
	}
	out := make([]RankObservation, 0, len(latest))
	for _, i := range latest {
		out = append(out, observations[i])
	}
	SortByKey(out)
	return out
}

// SortByKey orders observations by platform then brand in place.
func SortByKey(observations []RankObservation) {
	sort.Slice(observations, func(i, j int) bool {
		return keyLess(observations[i].Key(), observations[j].Key())
	})
}

func keyLess(a, b ObservationKey) bool {
	if a.Platform != b.Platform {
		return a.Platform < b.Platform
	}
	return a.Brand < b.Brand
}
