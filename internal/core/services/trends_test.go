package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestTrends_DailyPointCount(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit", "Dyson", "Coway")
	from := midnight(baseTime).AddDate(0, 0, -7)
	to := midnight(baseTime)
	env.ingest(t, rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 1, from.Add(3*time.Hour)))

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, From: from, To: to, Granularity: domain.GranularityDaily,
	})
	require.NoError(t, err)

	days := int(to.Sub(from) / (24 * time.Hour))
	assert.Len(t, points, days*3)

	for i, p := range points {
		assert.Equal(t, from.AddDate(0, 0, i/3), p.Timestamp, "point %d", i)
		assert.Equal(t, q.TrackedBrands[i%3], p.Brand, "point %d", i)
	}
}

func TestTrends_DailyPointCountUnalignedWindow(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit")
	ctx := context.Background()

	tests := []struct {
		name      string
		from, to  time.Time
		wantFirst time.Time
		wantLen   int
	}{
		// to mid-day: ceil rounds the partial day up.
		{"aligned from, unaligned to", midnight(baseTime).AddDate(0, 0, -2), baseTime,
			midnight(baseTime).AddDate(0, 0, -2), 3},
		// from mid-day: floored to its day, so the day it falls in is a bucket.
		{"unaligned from", baseTime.Add(-48 * time.Hour), baseTime,
			midnight(baseTime).AddDate(0, 0, -2), 3},
		{"unaligned from, aligned to", baseTime.Add(-48 * time.Hour), midnight(baseTime),
			midnight(baseTime).AddDate(0, 0, -2), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := env.engine.Trends(ctx, domain.TrendRequest{
				QueryID: q.ID, From: tt.from, To: tt.to, Granularity: domain.GranularityDaily,
			})
			require.NoError(t, err)
			require.Len(t, points, tt.wantLen)
			assert.Equal(t, tt.wantFirst, points[0].Timestamp)

			floored := domain.GranularityDaily.BucketStart(tt.from, time.UTC)
			days := int((tt.to.Sub(floored) + 24*time.Hour - 1) / (24 * time.Hour))
			assert.Equal(t, days, len(points))
		})
	}
}

func TestTrends_GapsAreEmitted(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit")
	from := midnight(baseTime).AddDate(0, 0, -3)
	env.ingest(t,
		rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 1, from.Add(time.Hour)),
		rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 3, from.AddDate(0, 0, 2).Add(time.Hour)),
	)

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, From: from, To: from.AddDate(0, 0, 3), Granularity: domain.GranularityDaily,
	})
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 1, points[0].SampleCount)
	assert.Equal(t, 1.0, points[0].AvgRank)
	assert.Equal(t, 100.0, points[0].AvgScore)

	assert.Equal(t, 0, points[1].SampleCount)
	assert.Equal(t, domain.AbsentRank, points[1].AvgRank)
	assert.Equal(t, 0.0, points[1].AvgScore)

	assert.Equal(t, 1, points[2].SampleCount)
	assert.Equal(t, 50.0, points[2].AvgScore)
}

func TestTrends_BucketAverages(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit", "Dyson")
	day := midnight(baseTime)
	env.ingest(t,
		rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 4, day.Add(time.Hour)),
		// Later in the same bucket: supersedes the rank 4 above.
		rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 1, day.Add(5*time.Hour)),
		rankAt(q.ID, domain.PlatformPerplexity, "Levoit", 3, day.Add(2*time.Hour)),
		rankAt(q.ID, domain.PlatformPerplexity, "Dyson", 0, day.Add(2*time.Hour)),
	)

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, From: day, To: day.AddDate(0, 0, 1), Granularity: domain.GranularityDaily,
	})
	require.NoError(t, err)
	require.Len(t, points, 2)

	levoit := points[0]
	assert.Equal(t, "Levoit", levoit.Brand)
	assert.Equal(t, 2, levoit.SampleCount)
	assert.Equal(t, 2.0, levoit.AvgRank)
	assert.Equal(t, 75.0, levoit.AvgScore)

	dyson := points[1]
	assert.Equal(t, "Dyson", dyson.Brand)
	assert.Equal(t, 1, dyson.SampleCount)
	assert.Equal(t, domain.AbsentRank, dyson.AvgRank)
	assert.Equal(t, 0.0, dyson.AvgScore)
}

func TestTrends_WeeklyStartsMonday(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit")
	// Wednesday.
	from := midnight(baseTime).AddDate(0, 0, 2)

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, From: from, To: from.AddDate(0, 0, 14), Granularity: domain.GranularityWeekly,
	})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, midnight(baseTime), points[0].Timestamp)
	assert.Equal(t, time.Monday, points[1].Timestamp.Weekday())
}

func TestTrends_MonthlyBuckets(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit")
	env.ingest(t, rankAt(q.ID, domain.PlatformGoogleAI, "Levoit", 2, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)))

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID:     q.ID,
		From:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Granularity: domain.GranularityMonthly,
	})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, time.February, points[1].Timestamp.Month())
	assert.Equal(t, 75.0, points[1].AvgScore)
	assert.Zero(t, points[0].SampleCount)
	assert.Zero(t, points[2].SampleCount)
}

func TestTrends_BrandSubset(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit", "Dyson", "Coway")
	from := midnight(baseTime)

	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, Brands: []string{"Coway", "Levoit"}, From: from, To: from.AddDate(0, 0, 1),
		Granularity: domain.GranularityDaily,
	})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Levoit", points[0].Brand)
	assert.Equal(t, "Coway", points[1].Brand)

	_, err = env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, Brands: []string{"Sharp"}, From: from, To: from.AddDate(0, 0, 1),
		Granularity: domain.GranularityDaily,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTrends_Validation(t *testing.T) {
	env := newTestEnv(t)
	q := env.createQuery(t, "purifier", "Levoit")
	from := midnight(baseTime)

	tests := []struct {
		name    string
		req     domain.TrendRequest
		wantErr error
	}{
		{"unknown granularity", domain.TrendRequest{QueryID: q.ID, From: from, To: from.AddDate(0, 0, 1), Granularity: "hourly"}, domain.ErrInvalidInput},
		{"inverted range", domain.TrendRequest{QueryID: q.ID, From: from, To: from, Granularity: domain.GranularityDaily}, domain.ErrInvalidInput},
		{"too many buckets", domain.TrendRequest{QueryID: q.ID, From: from.AddDate(-20, 0, 0), To: from, Granularity: domain.GranularityDaily}, domain.ErrInvalidInput},
		{"unknown query", domain.TrendRequest{QueryID: 42, From: from, To: from.AddDate(0, 0, 1), Granularity: domain.GranularityDaily}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.Trends(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTrends_ReferenceTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	env := newTestEnv(t, func(c *Config) { c.Location = loc })
	q := env.createQuery(t, "purifier", "Levoit")

	// 20:00 UTC on the 9th is already the 10th in UTC+10.
	env.ingest(t, rankAt(q.ID, domain.PlatformChatGPT, "Levoit", 1, time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)))

	from := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	points, err := env.engine.Trends(context.Background(), domain.TrendRequest{
		QueryID: q.ID, From: from, To: from.AddDate(0, 0, 2), Granularity: domain.GranularityDaily,
	})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Zero(t, points[0].SampleCount)
	assert.Equal(t, 1, points[1].SampleCount)
}
