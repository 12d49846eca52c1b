package domain

import "time"

// Granularity is the time-bucket width of a trend series.
type Granularity string

// Available granularities.
const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// AbsentRank is the AvgRank sentinel for buckets where the brand never ranked.
const AbsentRank float64 = 0

// MaxTrendBuckets bounds the number of buckets a single trend request may produce.
const MaxTrendBuckets = 3660

// IsValid returns true if the granularity is recognised.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (g Granularity) String() string {
	return string(g)
}

// Period returns the score period aggregated at this granularity.
func (g Granularity) Period() Period {
	return Period(g)
}

// BucketStart returns the start of the bucket containing t in loc.
// Weeks are ISO weeks starting on Monday.
func (g Granularity) BucketStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	switch g {
	case GranularityWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return day
	}
}

// Next returns the start of the bucket following the one starting at start.
func (g Granularity) Next(start time.Time) time.Time {
	switch g {
	case GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case GranularityMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Buckets partitions [from, to) into contiguous bucket starts. from is
// floored to its bucket start; the last bucket is the one containing the
// instant just before to.
func (g Granularity) Buckets(from, to time.Time, loc *time.Location) []time.Time {
	var starts []time.Time
	for start := g.BucketStart(from, loc); start.Before(to); start = g.Next(start) {
		starts = append(starts, start)
	}
	return starts
}

// TrendPoint is one (bucket, brand) cell of a trend series.
type TrendPoint struct {
	// Timestamp is the bucket start.
	Timestamp time.Time

	Brand string

	// AvgRank is the mean of present ranks, or AbsentRank.
	AvgRank float64

	AvgScore float64

	// SampleCount is the number of per-platform observations used; 0 marks a gap.
	SampleCount int
}

// TrendRequest describes a trend computation over [From, To).
type TrendRequest struct {
	QueryID     int64
	Brands      []string
	From        time.Time
	To          time.Time
	Granularity Granularity
}

// Validate checks the request shape and bounds the bucket count.
func (r TrendRequest) Validate(loc *time.Location) error {
	if r.QueryID <= 0 {
		return NewValidationError("query_id", "must be positive")
	}
	if !r.Granularity.IsValid() {
		return NewValidationError("granularity", "unknown granularity "+r.Granularity.String())
	}
	if r.From.IsZero() || r.To.IsZero() {
		return NewValidationError("from", "from and to are required")
	}
	if !r.From.Before(r.To) {
		return NewValidationError("from", "must be before to")
	}
	if loc == nil {
		loc = time.UTC
	}
	count := 0
	for start := r.Granularity.BucketStart(r.From, loc); start.Before(r.To); start = r.Granularity.Next(start) {
		count++
		if count > MaxTrendBuckets {
			return NewValidationError("from", "range spans too many buckets")
		}
	}
	return nil
}
