package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySourceURL        = "source.url"
	keySourceTimeout    = "source.timeout_seconds"
	keySourceRate       = "source.requests_per_second"
	keyDefaultPageSize  = "pagination.default_page_size"
	keyMaxPageSize      = "pagination.max_page_size"
	keyTrendsTimezone   = "trends.timezone"
	keyPrimaryBrand     = "scoring.primary_brand"
	keyPositionScores   = "scoring.position_scores"
	keyPlatformWeights  = "scoring.weights"
	keyCacheRedisAddr   = "cache.redis_addr"
	keyCacheTTL         = "cache.ttl_seconds"
	keyStorageDataDir   = "storage.data_dir"
	keyServerAddr       = "server.addr"
	keySchedulerEnabled = "scheduler.enabled"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing keys fall back to
// defaults one by one.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Source: domain.SourceSettings{
			URL:               s.configStore.GetString(keySourceURL),
			Timeout:           s.getSeconds(keySourceTimeout, defaults.Source.Timeout),
			RequestsPerSecond: s.configStore.GetFloat(keySourceRate),
		},
		Pagination: domain.PaginationSettings{
			DefaultPageSize: s.getInt(keyDefaultPageSize, defaults.Pagination.DefaultPageSize),
			MaxPageSize:     s.getInt(keyMaxPageSize, defaults.Pagination.MaxPageSize),
		},
		Trends: domain.TrendSettings{
			Timezone: s.getString(keyTrendsTimezone, defaults.Trends.Timezone),
		},
		Scoring: domain.ScoringSettings{
			PrimaryBrand:   s.configStore.GetString(keyPrimaryBrand),
			PositionScores: s.getPositionScores(defaults.Scoring.PositionScores),
			Weights:        s.getWeights(),
		},
		Cache: domain.CacheSettings{
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
			TTL:       s.getSeconds(keyCacheTTL, defaults.Cache.TTL),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keySourceURL, settings.Source.URL},
		{keySourceTimeout, int(settings.Source.Timeout / time.Second)},
		{keySourceRate, settings.Source.RequestsPerSecond},
		{keyDefaultPageSize, settings.Pagination.DefaultPageSize},
		{keyMaxPageSize, settings.Pagination.MaxPageSize},
		{keyTrendsTimezone, settings.Trends.Timezone},
		{keyPrimaryBrand, settings.Scoring.PrimaryBrand},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheTTL, int(settings.Cache.TTL / time.Second)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyServerAddr, settings.Server.Addr},
	}
	for rank, score := range settings.Scoring.PositionScores {
		values = append(values, struct {
			key   string
			value any
		}{fmt.Sprintf("%s.%d", keyPositionScores, rank), score})
	}
	for platform, weight := range settings.Scoring.Weights {
		values = append(values, struct {
			key   string
			value any
		}{keyPlatformWeights + "." + platform.String(), weight})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Validate checks the currently stored settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	// Task IDs use dashes; TOML keys use underscores.
	taskKeys := map[string]string{
		domain.TaskIDCacheWarm: "cache_warm",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Duration string like "45m" or "1h".
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil && d > 0 {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val * float64(time.Second))
}

// getPositionScores reads scoring.position_scores.<rank> keys. Any
// configured rank replaces the whole default table.
func (s *SettingsService) getPositionScores(defaultVal map[int]float64) map[int]float64 {
	keys := s.configStore.Keys(keyPositionScores)
	if len(keys) == 0 {
		return defaultVal
	}
	table := make(map[int]float64, len(keys))
	for _, key := range keys {
		rank, err := strconv.Atoi(strings.TrimPrefix(key, keyPositionScores+"."))
		if err != nil || rank <= 0 {
			continue
		}
		table[rank] = s.configStore.GetFloat(key)
	}
	if len(table) == 0 {
		return defaultVal
	}
	return table
}

// getWeights reads scoring.weights.<platform> keys. Unknown platforms are
// kept so Validate can report them.
func (s *SettingsService) getWeights() map[domain.Platform]float64 {
	keys := s.configStore.Keys(keyPlatformWeights)
	if len(keys) == 0 {
		return nil
	}
	weights := make(map[domain.Platform]float64, len(keys))
	for _, key := range keys {
		if key == keyPlatformWeights {
			continue
		}
		platform := domain.Platform(strings.TrimPrefix(key, keyPlatformWeights+"."))
		weights[platform] = s.configStore.GetFloat(key)
	}
	return weights
}
