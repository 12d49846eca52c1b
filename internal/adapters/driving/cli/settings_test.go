package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/services"
)

func setupSettings(t *testing.T) *services.SettingsService {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore())
	SetServices(Services{Settings: svc})
	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags(rootCmd)
	})
	return svc
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.Settings)
	}{
		{
			name:  "Source URL is trimmed",
			key:   "source.url",
			value: "  http://example.com  ",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, "http://example.com", s.Source.URL)
			},
		},
		{
			name:  "Timeout in seconds",
			key:   "source.timeout_seconds",
			value: "2.5",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 2500*time.Millisecond, s.Source.Timeout)
			},
		},
		{
			name:  "Page size",
			key:   "pagination.max_page_size",
			value: "250",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 250, s.Pagination.MaxPageSize)
			},
		},
		{
			name:  "Position score",
			key:   "scoring.position_scores.6",
			value: "5",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 5.0, s.Scoring.PositionScores[6])
				assert.Equal(t, 100.0, s.Scoring.PositionScores[1])
			},
		},
		{
			name:  "Platform weight",
			key:   "scoring.weights.perplexity",
			value: "2",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, 2.0, s.Scoring.Weights[domain.PlatformPerplexity])
			},
		},
		{
			name:  "Cache TTL",
			key:   "cache.ttl_seconds",
			value: "60",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, time.Minute, s.Cache.TTL)
			},
		},
		{
			name:  "Server address",
			key:   "server.addr",
			value: ":9090",
			check: func(t *testing.T, s *domain.Settings) {
				assert.Equal(t, ":9090", s.Server.Addr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			require.NoError(t, applySetting(&settings, tt.key, tt.value))
			tt.check(t, &settings)
		})
	}
}

func TestApplySetting_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Unknown key", key: "colour.scheme", value: "dark"},
		{name: "Non-numeric page size", key: "pagination.default_page_size", value: "many"},
		{name: "Zero timeout", key: "source.timeout_seconds", value: "0"},
		{name: "Bad rank", key: "scoring.position_scores.first", value: "10"},
		{name: "Unknown platform", key: "scoring.weights.bing", value: "1"},
		{name: "Non-numeric weight", key: "scoring.weights.chatgpt", value: "heavy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			err := applySetting(&settings, tt.key, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestFormatPositionScores(t *testing.T) {
	assert.Equal(t, "1→100, 2→75, 3→50, 4→30, 5→15", formatPositionScores(nil))
	assert.Equal(t, "1→10, 3→2.5", formatPositionScores(map[int]float64{3: 2.5, 1: 10}))
}

func TestSettingsShow(t *testing.T) {
	setupSettings(t)

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "URL: (local store)")
	assert.Contains(t, out, "Timezone: UTC")
	assert.Contains(t, out, "Primary brand: (first tracked brand)")
	assert.Contains(t, out, "Platform weights: equal")
	assert.Contains(t, out, "Redis: (in-process cache)")
	assert.Contains(t, out, "Address: :8080")
}

func TestSettingsSet(t *testing.T) {
	svc := setupSettings(t)

	out, err := execute(t, "settings", "set", "scoring.primary_brand", "Levoit")

	require.NoError(t, err)
	assert.Contains(t, out, "scoring.primary_brand = Levoit")

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "Levoit", settings.Scoring.PrimaryBrand)
}

func TestSettingsSet_RejectsInvalidValue(t *testing.T) {
	svc := setupSettings(t)

	_, err := execute(t, "settings", "set", "trends.timezone", "Mars/Olympus")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "UTC", settings.Trends.Timezone)
}

func TestSettingsValidate(t *testing.T) {
	setupSettings(t)

	out, err := execute(t, "settings", "validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Settings are valid.")
}

func TestSettings_NotConfigured(t *testing.T) {
	t.Cleanup(func() { resetFlags(rootCmd) })
	SetServices(Services{})

	_, err := execute(t, "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
