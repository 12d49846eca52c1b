package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.geovis/config.toml.

Use "geovis settings set <key> <value>" to change one value. Every change is
validated before it is saved.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting.

Keys:
  source.url                  Observation source base URL (empty = local store)
  source.timeout_seconds      Per-fetch timeout
  source.requests_per_second  Client rate limit (0 = unlimited)
  pagination.default_page_size
  pagination.max_page_size
  trends.timezone             IANA zone used for trend buckets
  scoring.primary_brand       Brand every query must track
  scoring.position_scores.<rank>
  scoring.weights.<platform>  chatgpt, perplexity, google_ai
  cache.redis_addr            Redis address (empty = in-process cache)
  cache.ttl_seconds
  storage.data_dir
  server.addr                 Listen address for geovis serve`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Source]")
	if settings.Source.IsRemote() {
		cmd.Printf("  URL: %s\n", settings.Source.URL)
	} else {
		cmd.Println("  URL: (local store)")
	}
	cmd.Printf("  Timeout: %s\n", settings.Source.Timeout)
	if settings.Source.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Source.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Pagination]")
	cmd.Printf("  Default page size: %d\n", settings.Pagination.DefaultPageSize)
	cmd.Printf("  Max page size: %d\n", settings.Pagination.MaxPageSize)
	cmd.Println()

	cmd.Println("[Trends]")
	cmd.Printf("  Timezone: %s\n", settings.Trends.Timezone)
	cmd.Println()

	cmd.Println("[Scoring]")
	primary := settings.Scoring.PrimaryBrand
	if primary == "" {
		primary = "(first tracked brand)"
	}
	cmd.Printf("  Primary brand: %s\n", primary)
	cmd.Printf("  Position scores: %s\n", formatPositionScores(settings.Scoring.PositionScores))
	if len(settings.Scoring.Weights) == 0 {
		cmd.Println("  Platform weights: equal")
	} else {
		for _, p := range domain.AllPlatforms() {
			if w, ok := settings.Scoring.Weights[p]; ok {
				cmd.Printf("  Weight %s: %g\n", p, w)
			}
		}
	}
	cmd.Println()

	cmd.Println("[Cache]")
	if settings.Cache.RedisAddr != "" {
		cmd.Printf("  Redis: %s\n", settings.Cache.RedisAddr)
	} else {
		cmd.Println("  Redis: (in-process cache)")
	}
	cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.Storage.DataDir
	switch {
	case settings.Storage.InMemory():
		dataDir = "(in memory, not persisted)"
	case dataDir == "":
		dataDir = "~/.geovis/data"
	}
	cmd.Printf("  Data dir: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key, value := args[0], args[1]
	if err := applySetting(settings, key, value); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Println("Settings are valid.")
	return nil
}

// applySetting sets one dotted key on settings.
func applySetting(settings *domain.Settings, key, value string) error {
	switch {
	case key == "source.url":
		settings.Source.URL = strings.TrimSpace(value)
	case key == "source.timeout_seconds":
		d, err := parseSeconds(key, value)
		if err != nil {
			return err
		}
		settings.Source.Timeout = d
	case key == "source.requests_per_second":
		f, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		settings.Source.RequestsPerSecond = f
	case key == "pagination.default_page_size":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		settings.Pagination.DefaultPageSize = n
	case key == "pagination.max_page_size":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		settings.Pagination.MaxPageSize = n
	case key == "trends.timezone":
		settings.Trends.Timezone = value
	case key == "scoring.primary_brand":
		settings.Scoring.PrimaryBrand = strings.TrimSpace(value)
	case strings.HasPrefix(key, "scoring.position_scores."):
		rank, err := strconv.Atoi(strings.TrimPrefix(key, "scoring.position_scores."))
		if err != nil || rank <= 0 {
			return domain.NewValidationError(key, "rank must be a positive integer")
		}
		score, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		table := make(map[int]float64, len(settings.Scoring.PositionScores)+1)
		for r, s := range settings.Scoring.PositionScores {
			table[r] = s
		}
		table[rank] = score
		settings.Scoring.PositionScores = table
	case strings.HasPrefix(key, "scoring.weights."):
		platform := domain.Platform(strings.TrimPrefix(key, "scoring.weights."))
		if !platform.IsValid() {
			return domain.NewValidationError(key, "unknown platform "+platform.String())
		}
		weight, err := parseFloat(key, value)
		if err != nil {
			return err
		}
		weights := make(map[domain.Platform]float64, len(settings.Scoring.Weights)+1)
		for p, w := range settings.Scoring.Weights {
			weights[p] = w
		}
		weights[platform] = weight
		settings.Scoring.Weights = weights
	case key == "cache.redis_addr":
		settings.Cache.RedisAddr = strings.TrimSpace(value)
	case key == "cache.ttl_seconds":
		d, err := parseSeconds(key, value)
		if err != nil {
			return err
		}
		settings.Cache.TTL = d
	case key == "storage.data_dir":
		settings.Storage.DataDir = value
	case key == "server.addr":
		settings.Server.Addr = value
	default:
		return domain.NewValidationError(key, "unknown setting")
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, domain.NewValidationError(key, "must be a number")
	}
	return f, nil
}

func parseSeconds(key, value string) (time.Duration, error) {
	f, err := parseFloat(key, value)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, domain.NewValidationError(key, "must be positive")
	}
	return time.Duration(f * float64(time.Second)), nil
}

func formatPositionScores(table map[int]float64) string {
	if len(table) == 0 {
		table = domain.DefaultPositionScores()
	}
	ranks := make([]int, 0, len(table))
	for r := range table {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = fmt.Sprintf("%d→%g", r, table[r])
	}
	return strings.Join(parts, ", ")
}
