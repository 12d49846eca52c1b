package domain

import (
	"sort"
	"time"
)

// ComparisonRow holds every tracked brand's score for one query.
type ComparisonRow struct {
	QueryID   int64
	QueryText string

	// Brands preserves the query's tracked order; Brands[0] is primary.
	Brands []string

	// ScoreByBrand has an entry for every tracked brand, 0 when never observed.
	ScoreByBrand map[string]float64

	CompetitiveGap float64
}

// PrimaryScore returns the primary brand's score.
func (r *ComparisonRow) PrimaryScore() float64 {
	if len(r.Brands) == 0 {
		return 0
	}
	return r.ScoreByBrand[r.Brands[0]]
}

// ComparisonFilter narrows the comparison to active queries of a category
// and to observations within [From, To). Period defaults to PeriodRaw.
type ComparisonFilter struct {
	Category *Category
	From     time.Time
	To       time.Time
	Period   Period
}

// Validate rejects unknown enum values and inverted windows.
func (f ComparisonFilter) Validate() error {
	if f.Category != nil && !f.Category.IsValid() {
		return NewValidationError("category", "unknown category "+f.Category.String())
	}
	if f.Period != "" && !f.Period.IsValid() {
		return NewValidationError("period", "unknown period "+f.Period.String())
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return NewValidationError("from", "must be before to")
	}
	return nil
}

// SortByGap returns a copy of rows ordered by competitive gap ascending,
// largest deficit first. rows is not modified.
func SortByGap(rows []ComparisonRow) []ComparisonRow {
	out := append([]ComparisonRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompetitiveGap < out[j].CompetitiveGap
	})
	return out
}

// SortByPrimaryScore returns a copy of rows ordered by the primary brand's
// score descending. rows is not modified.
func SortByPrimaryScore(rows []ComparisonRow) []ComparisonRow {
	out := append([]ComparisonRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PrimaryScore() > out[j].PrimaryScore()
	})
	return out
}
