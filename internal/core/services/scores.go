package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ensure ScoreService implements the interface.
var _ driving.ScoreService = (*ScoreService)(nil)

// ScoreService derives visibility scores from observation history.
// Scores are recomputed on every call and never stored.
type ScoreService struct {
	queries  *QueryService
	rankings driven.RankingStore
	cfg      Config
}

// NewScoreService creates a new score service.
func NewScoreService(queries *QueryService, rankings driven.RankingStore, cfg Config) *ScoreService {
	return &ScoreService{queries: queries, rankings: rankings, cfg: cfg}
}

// Score computes one brand's score for one query. A tracked brand that was
// never observed scores 0. The primary brand's record carries the
// competitive gap.
func (s *ScoreService) Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error) {
	if s.rankings == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query, err := s.queries.Get(ctx, req.QueryID)
	if err != nil {
		return nil, err
	}
	if !query.Tracks(req.Brand) {
		return nil, domain.NewValidationError("brand", fmt.Sprintf("%q is not tracked by query %d", req.Brand, query.ID))
	}
	scores, err := s.brandScores(ctx, query, req.Period, req.From, req.To)
	if err != nil {
		return nil, err
	}
	return s.record(query, req.Brand, req.Period, scores), nil
}

// List computes scores for every (active query, tracked brand) pair
// matching filter. Pairs are ordered by query ID descending, then by
// tracked brand order. Only the requested page is computed.
func (s *ScoreService) List(
	ctx context.Context,
	filter domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Page[domain.ScoreRecord], error) {
	if s.rankings == nil {
		return domain.Page[domain.ScoreRecord]{}, domain.ErrNotImplemented
	}
	if err := filter.Validate(); err != nil {
		return domain.Page[domain.ScoreRecord]{}, err
	}
	req, err := s.cfg.normalize(page)
	if err != nil {
		return domain.Page[domain.ScoreRecord]{}, err
	}
	period := filter.Period
	if period == "" {
		period = domain.PeriodRaw
	}

	var queries []domain.VisibilityQuery
	if filter.QueryID != 0 {
		q, err := s.queries.Get(ctx, filter.QueryID)
		if err != nil {
			return domain.Page[domain.ScoreRecord]{}, err
		}
		queries = []domain.VisibilityQuery{*q}
	} else {
		queries, err = s.queries.activeQueries(ctx, nil)
		if err != nil {
			return domain.Page[domain.ScoreRecord]{}, err
		}
		for i, j := 0, len(queries)-1; i < j; i, j = i+1, j-1 {
			queries[i], queries[j] = queries[j], queries[i]
		}
	}

	type pair struct {
		query *domain.VisibilityQuery
		brand string
	}
	var pairs []pair
	for i := range queries {
		for _, brand := range queries[i].TrackedBrands {
			if filter.Brand != "" && brand != filter.Brand {
				continue
			}
			pairs = append(pairs, pair{query: &queries[i], brand: brand})
		}
	}

	paged := domain.Paginate(pairs, req)
	result := domain.Page[domain.ScoreRecord]{
		Items:    make([]domain.ScoreRecord, 0, len(paged.Items)),
		Total:    paged.Total,
		Page:     paged.Page,
		PageSize: paged.PageSize,
	}
	computed := make(map[int64]map[string]float64)
	for _, p := range paged.Items {
		scores, ok := computed[p.query.ID]
		if !ok {
			scores, err = s.brandScores(ctx, p.query, period, time.Time{}, time.Time{})
			if err != nil {
				return domain.Page[domain.ScoreRecord]{}, err
			}
			computed[p.query.ID] = scores
		}
		result.Items = append(result.Items, *s.record(p.query, p.brand, period, scores))
	}
	return result, nil
}

// brandScores computes every tracked brand's score for query.
//
// Raw scores come from the latest projection, restricted to [from, to)
// when a window is given. Aggregated periods average the bucket scores
// over buckets in which the query had any observation; the window
// defaults to the period's lookback ending now.
func (s *ScoreService) brandScores(
	ctx context.Context,
	query *domain.VisibilityQuery,
	period domain.Period,
	from, to time.Time,
) (map[string]float64, error) {
	g, aggregated := period.Granularity()
	if !aggregated {
		latest, err := s.latestIn(ctx, query.ID, from, to)
		if err != nil {
			return nil, err
		}
		return rawScores(latest, query.TrackedBrands, s.cfg.Model), nil
	}

	defFrom, defTo := period.DefaultWindow(s.cfg.now())
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}
	loc := s.cfg.location()
	if err := (domain.TrendRequest{QueryID: query.ID, From: from, To: to, Granularity: g}).Validate(loc); err != nil {
		return nil, err
	}

	starts := g.Buckets(from, to, loc)
	observations, err := s.rankings.List(ctx, domain.ObservationFilter{QueryID: query.ID, From: starts[0], To: to})
	if err != nil {
		return nil, fmt.Errorf("loading observations for query %d: %w", query.ID, err)
	}
	series := bucketize(observations, query.TrackedBrands, starts, g, loc, s.cfg.Model)

	scores := make(map[string]float64, len(query.TrackedBrands))
	for _, brand := range query.TrackedBrands {
		var sum float64
		var n int
		for bi, point := range series.points[brand] {
			if series.observed[bi] {
				sum += point.AvgScore
				n++
			}
		}
		if n > 0 {
			scores[brand] = domain.ClampScore(domain.Round2(sum / float64(n)))
		} else {
			scores[brand] = 0
		}
	}
	return scores, nil
}

func (s *ScoreService) latestIn(ctx context.Context, queryID int64, from, to time.Time) ([]domain.RankObservation, error) {
	if from.IsZero() && to.IsZero() {
		latest, err := s.rankings.Latest(ctx, queryID)
		if err != nil {
			return nil, fmt.Errorf("latest rankings for query %d: %w", queryID, err)
		}
		return latest, nil
	}
	observations, err := s.rankings.List(ctx, domain.ObservationFilter{QueryID: queryID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("loading observations for query %d: %w", queryID, err)
	}
	return domain.LatestByKey(observations), nil
}

func (s *ScoreService) record(
	query *domain.VisibilityQuery,
	brand string,
	period domain.Period,
	scores map[string]float64,
) *domain.ScoreRecord {
	if period == "" {
		period = domain.PeriodRaw
	}
	rec := &domain.ScoreRecord{
		QueryID:         query.ID,
		Brand:           brand,
		VisibilityScore: scores[brand],
		Period:          period,
		ComputedAt:      s.cfg.now(),
	}
	if brand == query.PrimaryBrand() {
		gap := gapFor(query, scores)
		rec.CompetitiveGap = &gap
	}
	return rec
}

// gapFor is the primary brand's score minus the best competitor's.
func gapFor(query *domain.VisibilityQuery, scores map[string]float64) float64 {
	competitors := query.Competitors()
	others := make([]float64, len(competitors))
	for i, b := range competitors {
		others[i] = scores[b]
	}
	return domain.CompetitiveGap(scores[query.PrimaryBrand()], others)
}
