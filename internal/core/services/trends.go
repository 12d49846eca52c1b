package services

import (
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// bucketSeries is the per-brand trend matrix for one query.
type bucketSeries struct {
	starts []time.Time

	// observed[i] is true when the query had any observation in bucket i.
	observed []bool

	// points holds one point per bucket for each requested brand.
	points map[string][]domain.TrendPoint
}

// bucketize groups the query's observations into buckets and computes a
// point for every (bucket, brand). observations must cover every brand of
// the query, not only the requested ones, so platform presence is right.
func bucketize(
	observations []domain.RankObservation,
	brands []string,
	starts []time.Time,
	g domain.Granularity,
	loc *time.Location,
	model domain.ScoringModel,
) bucketSeries {
	index := make(map[int64]int, len(starts))
	for i, start := range starts {
		index[start.Unix()] = i
	}

	latest := make([]map[domain.ObservationKey]domain.RankObservation, len(starts))
	platforms := make([]map[domain.Platform]bool, len(starts))
	for i := range observations {
		o := observations[i]
		bi, ok := index[g.BucketStart(o.ScrapedAt, loc).Unix()]
		if !ok {
			continue
		}
		if latest[bi] == nil {
			latest[bi] = make(map[domain.ObservationKey]domain.RankObservation)
			platforms[bi] = make(map[domain.Platform]bool)
		}
		platforms[bi][o.Platform] = true
		if cur, seen := latest[bi][o.Key()]; !seen || o.Supersedes(&cur) {
			latest[bi][o.Key()] = o
		}
	}

	series := bucketSeries{
		starts:   starts,
		observed: make([]bool, len(starts)),
		points:   make(map[string][]domain.TrendPoint, len(brands)),
	}
	for bi, start := range starts {
		series.observed[bi] = len(platforms[bi]) > 0
		for _, brand := range brands {
			series.points[brand] = append(series.points[brand],
				trendPoint(start, brand, latest[bi], platforms[bi], model))
		}
	}
	return series
}

// flatten orders points chronologically, brands in the given order within
// each bucket.
func (b bucketSeries) flatten(brands []string) []domain.TrendPoint {
	out := make([]domain.TrendPoint, 0, len(b.starts)*len(brands))
	for bi := range b.starts {
		for _, brand := range brands {
			out = append(out, b.points[brand][bi])
		}
	}
	return out
}

// trendPoint scores one brand from the latest observation per platform.
// A platform present for the query where the brand was not observed counts
// as absent.
func trendPoint(
	start time.Time,
	brand string,
	latest map[domain.ObservationKey]domain.RankObservation,
	present map[domain.Platform]bool,
	model domain.ScoringModel,
) domain.TrendPoint {
	point := domain.TrendPoint{Timestamp: start, Brand: brand, AvgRank: domain.AbsentRank}
	ranks := make(map[domain.Platform]int, len(present))
	var rankSum, ranked int
	for platform := range present {
		o, ok := latest[domain.ObservationKey{Platform: platform, Brand: brand}]
		if !ok {
			ranks[platform] = domain.RankAbsent
			continue
		}
		ranks[platform] = o.RankPosition
		point.SampleCount++
		if o.Present() {
			rankSum += o.RankPosition
			ranked++
		}
	}
	if ranked > 0 {
		point.AvgRank = domain.Round2(float64(rankSum) / float64(ranked))
	}
	if len(present) > 0 {
		point.AvgScore = model.Score(ranks)
	}
	return point
}

// rawScores scores every brand from a latest projection.
func rawScores(latest []domain.RankObservation, brands []string, model domain.ScoringModel) map[string]float64 {
	byKey := make(map[domain.ObservationKey]domain.RankObservation, len(latest))
	present := make(map[domain.Platform]bool)
	for i := range latest {
		byKey[latest[i].Key()] = latest[i]
		present[latest[i].Platform] = true
	}
	scores := make(map[string]float64, len(brands))
	for _, brand := range brands {
		scores[brand] = trendPoint(time.Time{}, brand, byKey, present, model).AvgScore
	}
	return scores
}
