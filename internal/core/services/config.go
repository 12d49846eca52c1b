package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// defaultWorkers bounds concurrent per-query score computations.
const defaultWorkers = 4

// Config carries the settings the computation services read.
type Config struct {
	// PrimaryBrand, when set, must be tracked by every query.
	PrimaryBrand string

	Model    domain.ScoringModel
	Location *time.Location

	DefaultPageSize int
	MaxPageSize     int

	// CacheTTL is the lifetime of cached latest and comparison results.
	CacheTTL time.Duration

	// SourceTimeout bounds each facade fetch.
	SourceTimeout time.Duration

	// Workers bounds the comparison worker group.
	Workers int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	cfg, _ := NewConfig(domain.DefaultSettings()) //nolint:errcheck // defaults always validate
	return cfg
}

// NewConfig derives service configuration from settings.
func NewConfig(settings domain.Settings) (Config, error) {
	if err := settings.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	loc, err := settings.Trends.Location()
	if err != nil {
		return Config{}, err
	}
	return Config{
		PrimaryBrand:    settings.Scoring.PrimaryBrand,
		Model:           settings.Scoring.Model(),
		Location:        loc,
		DefaultPageSize: settings.Pagination.DefaultPageSize,
		MaxPageSize:     settings.Pagination.MaxPageSize,
		CacheTTL:        settings.Cache.TTL,
		SourceTimeout:   settings.Source.Timeout,
		Workers:         defaultWorkers,
	}, nil
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return defaultWorkers
	}
	return c.Workers
}

func (c Config) timeout() time.Duration {
	if c.SourceTimeout <= 0 {
		return 10 * time.Second
	}
	return c.SourceTimeout
}

func (c Config) cacheTTL() time.Duration {
	if c.CacheTTL <= 0 {
		return time.Hour
	}
	return c.CacheTTL
}

func (c Config) normalize(page domain.PageRequest) (domain.PageRequest, error) {
	return page.Normalize(c.DefaultPageSize, c.MaxPageSize)
}
