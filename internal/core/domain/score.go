package domain

import "time"

// Period selects the aggregation window of a score.
type Period string

// Available score periods.
const (
	PeriodRaw     Period = "raw"
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// IsValid returns true if the period is recognised.
func (p Period) IsValid() bool {
	switch p {
	case PeriodRaw, PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Period) String() string {
	return string(p)
}

// Granularity returns the bucket width for aggregated periods.
// The boolean is false for PeriodRaw.
func (p Period) Granularity() (Granularity, bool) {
	switch p {
	case PeriodDaily:
		return GranularityDaily, true
	case PeriodWeekly:
		return GranularityWeekly, true
	case PeriodMonthly:
		return GranularityMonthly, true
	default:
		return "", false
	}
}

// DefaultWindow is the lookback used when an aggregated score is requested
// without an explicit range.
func (p Period) DefaultWindow(now time.Time) (from, to time.Time) {
	switch p {
	case PeriodDaily:
		return now.AddDate(0, 0, -30), now
	case PeriodWeekly:
		return now.AddDate(0, 0, -7*12), now
	case PeriodMonthly:
		return now.AddDate(0, -12, 0), now
	default:
		return time.Time{}, time.Time{}
	}
}

// ScoreRecord is a derived visibility score. It is always recomputable from
// the observation history and is never edited by hand.
type ScoreRecord struct {
	QueryID         int64
	Brand           string
	VisibilityScore float64

	// CompetitiveGap is set on the primary brand's record only.
	CompetitiveGap *float64

	Period     Period
	ComputedAt time.Time
}

// ScoreRequest identifies one score computation. From/To are optional;
// aggregated periods fall back to Period.DefaultWindow.
type ScoreRequest struct {
	QueryID int64
	Brand   string
	Period  Period
	From    time.Time
	To      time.Time
}

// Validate checks the request.
func (r ScoreRequest) Validate() error {
	if r.QueryID <= 0 {
		return NewValidationError("query_id", "must be positive")
	}
	if r.Brand == "" {
		return NewValidationError("brand", "is required")
	}
	if !r.Period.IsValid() {
		return NewValidationError("period", "unknown period "+r.Period.String())
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return NewValidationError("from", "must be before to")
	}
	return nil
}

// ScoreFilter narrows a score listing. Zero values are not applied;
// an empty Period means PeriodRaw.
type ScoreFilter struct {
	QueryID int64
	Brand   string
	Period  Period
}

// Validate rejects unknown periods.
func (f ScoreFilter) Validate() error {
	if f.Period != "" && !f.Period.IsValid() {
		return NewValidationError("period", "unknown period "+f.Period.String())
	}
	if f.QueryID < 0 {
		return NewValidationError("query_id", "must be positive")
	}
	return nil
}
