package catalog

import (
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// Brands are the tracked brands of every catalog query, primary first.
var Brands = []string{"Levoit", "Dyson", "Coway", "Honeywell"}

var (
	catalogCreated = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	catalogUpdated = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
)

type entry struct {
	id       int64
	text     string
	category domain.Category
	priority domain.Priority
	// scores by brand, in Brands order.
	scores [4]float64
}

var entries = []entry{
	{1, "best air purifier 2025", domain.CategoryProductComparison, domain.PriorityHigh, [4]float64{72.5, 64.3, 58.2, 48.1}},
	{2, "levoit vs dyson air purifier", domain.CategoryBrandSearch, domain.PriorityHigh, [4]float64{68.2, 71.7, 32.4, 28.6}},
	{3, "best humidifier for bedroom", domain.CategoryCategorySearch, domain.PriorityHigh, [4]float64{58.4, 62.1, 70.5, 45.3}},
	{4, "air purifier for allergies", domain.CategoryCategorySearch, domain.PriorityMedium, [4]float64{64.8, 59.4, 52.1, 61.2}},
	{5, "best air purifier under $100", domain.CategoryProductComparison, domain.PriorityMedium, [4]float64{81.3, 22.4, 58.7, 54.2}},
	{6, "levoit core 300 review", domain.CategoryBrandSearch, domain.PriorityHigh, [4]float64{76.1, 18.5, 12.3, 8.4}},
	{7, "smart home air quality", domain.CategoryGeneral, domain.PriorityLow, [4]float64{42.6, 55.8, 38.4, 60.8}},
	{8, "levoit vs honeywell hepa filter", domain.CategoryBrandSearch, domain.PriorityMedium, [4]float64{71.0, 35.2, 28.6, 64.7}},
}

// Per-platform latest ranks by brand.
var latestRanks = map[string]map[domain.Platform]int{
	"Levoit":    {domain.PlatformChatGPT: 1, domain.PlatformPerplexity: 2, domain.PlatformGoogleAI: 2},
	"Dyson":     {domain.PlatformChatGPT: 2, domain.PlatformPerplexity: 1, domain.PlatformGoogleAI: 3},
	"Coway":     {domain.PlatformChatGPT: 3, domain.PlatformPerplexity: 3, domain.PlatformGoogleAI: 1},
	"Honeywell": {domain.PlatformChatGPT: 4, domain.PlatformPerplexity: 4, domain.PlatformGoogleAI: 4},
}

// Trend baselines by brand.
var (
	baseRanks  = map[string]float64{"Levoit": 1.8, "Dyson": 2.4, "Coway": 3.1, "Honeywell": 3.8}
	baseScores = map[string]float64{"Levoit": 72, "Dyson": 64, "Coway": 55, "Honeywell": 48}
)

// trendSamples is the per-point sample count reported for catalog trends.
const trendSamples = 3

func (e entry) query() domain.VisibilityQuery {
	score := e.scores[0]
	return domain.VisibilityQuery{
		ID:            e.id,
		Text:          e.text,
		Category:      e.category,
		Priority:      e.priority,
		TrackedBrands: append([]string(nil), Brands...),
		Active:        true,
		CreatedAt:     catalogCreated,
		UpdatedAt:     catalogUpdated,
		LatestScore:   &score,
	}
}

func (e entry) scoreOf(brand string) (float64, bool) {
	for i, b := range Brands {
		if b == brand {
			return e.scores[i], true
		}
	}
	return 0, false
}

func (e entry) gap() float64 {
	return domain.CompetitiveGap(e.scores[0], e.scores[1:])
}

func (e entry) comparisonRow() domain.ComparisonRow {
	byBrand := make(map[string]float64, len(Brands))
	for i, b := range Brands {
		byBrand[b] = e.scores[i]
	}
	return domain.ComparisonRow{
		QueryID:        e.id,
		QueryText:      e.text,
		Brands:         append([]string(nil), Brands...),
		ScoreByBrand:   byBrand,
		CompetitiveGap: e.gap(),
	}
}

func lookup(id int64) (entry, bool) {
	for _, e := range entries {
		if e.id == id {
			return e, true
		}
	}
	return entry{}, false
}
