package driving

import "github.com/custodia-labs/geovis/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults per key.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// Validate checks the currently stored settings.
	Validate() error

	// GetSchedulerConfig returns the background scheduler configuration.
	GetSchedulerConfig() domain.SchedulerConfig
}
