package domain

import (
	"fmt"
	"time"
)

// SourceSettings configures the remote observation source.
type SourceSettings struct {
	// URL is the base URL of the observation source API.
	// Empty means the local store is the live source.
	URL string

	// Timeout bounds every single fetch.
	Timeout time.Duration

	// RequestsPerSecond throttles client calls; 0 disables throttling.
	RequestsPerSecond float64
}

// IsRemote returns true if a remote source is configured.
func (s SourceSettings) IsRemote() bool {
	return s.URL != ""
}

// PaginationSettings bounds listings.
type PaginationSettings struct {
	DefaultPageSize int
	MaxPageSize     int
}

// TrendSettings configures bucketing.
type TrendSettings struct {
	// Timezone is the IANA name of the reference timezone for calendar buckets.
	Timezone string
}

// Location resolves Timezone, defaulting to UTC.
func (t TrendSettings) Location() (*time.Location, error) {
	if t.Timezone == "" || t.Timezone == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", t.Timezone, err)
	}
	return loc, nil
}

// ScoringSettings configures the scoring model.
type ScoringSettings struct {
	// PrimaryBrand, when set, must be tracked by every query and is placed first.
	PrimaryBrand string

	// PositionScores maps rank positions to per-platform scores.
	PositionScores map[int]float64

	// Weights enables the weighted model; empty means equal weights.
	Weights map[Platform]float64
}

// Model builds the scoring model described by the settings.
func (s ScoringSettings) Model() ScoringModel {
	table := s.PositionScores
	if len(table) == 0 {
		table = DefaultPositionScores()
	}
	return ScoringModel{Curve: TablePositionCurve(table), Weights: s.Weights}
}

// CacheSettings configures the optional result cache.
type CacheSettings struct {
	// RedisAddr selects the Redis cache; empty uses the in-process cache.
	RedisAddr string

	// TTL is the lifetime of cached latest/comparison results.
	TTL time.Duration
}

// StorageSettings configures local persistence.
type StorageSettings struct {
	// DataDir holds the SQLite database. Empty means ~/.geovis/data and
	// InMemoryDataDir keeps nothing on disk.
	DataDir string
}

// InMemoryDataDir selects the in-process stores instead of SQLite.
const InMemoryDataDir = ":memory:"

// InMemory reports whether data lives only for the life of the process.
func (s StorageSettings) InMemory() bool {
	return s.DataDir == InMemoryDataDir
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// Settings is the complete application configuration.
type Settings struct {
	Source     SourceSettings
	Pagination PaginationSettings
	Trends     TrendSettings
	Scoring    ScoringSettings
	Cache      CacheSettings
	Storage    StorageSettings
	Server     ServerSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			Timeout: 10 * time.Second,
		},
		Pagination: PaginationSettings{
			DefaultPageSize: DefaultPageSize,
			MaxPageSize:     MaxPageSize,
		},
		Trends: TrendSettings{
			Timezone: "UTC",
		},
		Scoring: ScoringSettings{
			PositionScores: DefaultPositionScores(),
		},
		Cache: CacheSettings{
			TTL: time.Hour,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// Validate checks the settings for values that would break the engine.
func (s Settings) Validate() error {
	if s.Pagination.DefaultPageSize <= 0 || s.Pagination.MaxPageSize <= 0 {
		return NewValidationError("pagination", "page sizes must be positive")
	}
	if s.Pagination.DefaultPageSize > s.Pagination.MaxPageSize {
		return NewValidationError("pagination.default_page_size", "must not exceed max_page_size")
	}
	if s.Source.Timeout <= 0 {
		return NewValidationError("source.timeout_seconds", "must be positive")
	}
	if s.Source.RequestsPerSecond < 0 {
		return NewValidationError("source.requests_per_second", "must not be negative")
	}
	for p, w := range s.Scoring.Weights {
		if !p.IsValid() {
			return NewValidationError("scoring.weights", "unknown platform "+p.String())
		}
		if w < 0 {
			return NewValidationError("scoring.weights", "weights must not be negative")
		}
	}
	if _, err := s.Trends.Location(); err != nil {
		return NewValidationError("trends.timezone", err.Error())
	}
	return nil
}
