package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure Facade implements the interface.
var _ driving.VisibilityFacade = (*Facade)(nil)

// Fetch outcomes reported to the observer.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Overview section names used in PartialAggregationError.
const (
	SectionQueries    = "queries"
	SectionComparison = "comparison"
)

// Facade is the presentation layer's single read entry point. Each fetch
// runs against the live source under a timeout. Transport failures are
// answered from the fallback source and tagged; validation and not-found
// errors are returned as-is. There is no retry.
type Facade struct {
	live     driven.VisibilitySource
	fallback driven.VisibilitySource
	observer driven.FetchObserver
	cfg      Config
}

// NewFacade creates a facade. fallback may be nil, in which case transport
// failures are returned as errors.
func NewFacade(live, fallback driven.VisibilitySource, cfg Config) *Facade {
	return &Facade{live: live, fallback: fallback, cfg: cfg}
}

// SetObserver sets the fetch observer used for metrics.
func (f *Facade) SetObserver(observer driven.FetchObserver) {
	f.observer = observer
}

// fetch runs call against the live source and falls back on transport
// failure.
func fetch[T any](
	ctx context.Context,
	f *Facade,
	op string,
	call func(context.Context, driven.VisibilitySource) (T, error),
) (domain.Result[T], error) {
	start := time.Now()

	var err error
	if f.live == nil {
		err = &domain.TransportError{Detail: "no live source configured"}
	} else {
		fctx, cancel := context.WithTimeout(ctx, f.cfg.timeout())
		var data T
		data, err = call(fctx, f.live)
		cancel()
		if err == nil {
			f.observe(op, OutcomeLive, start)
			return domain.Live(data), nil
		}
	}

	if domain.IsLocalError(err) {
		f.observe(op, OutcomeError, start)
		return domain.Result[T]{}, err
	}
	if ctx.Err() != nil {
		f.observe(op, OutcomeError, start)
		return domain.Result[T]{}, fmt.Errorf("%s: %w", op, ctx.Err())
	}

	cause := asTransportError(err)
	if f.fallback == nil {
		f.observe(op, OutcomeError, start)
		return domain.Result[T]{}, fmt.Errorf("%s: %w", op, cause)
	}
	logger.Warn("%s: live source failed, serving substitute data: %v", op, cause)

	data, ferr := call(ctx, f.fallback)
	if ferr != nil {
		f.observe(op, OutcomeError, start)
		return domain.Result[T]{}, fmt.Errorf("%s: no substitute data (%v): %w", op, ferr, cause)
	}
	f.observe(op, OutcomeFallback, start)
	return domain.Fallback(data, cause), nil
}

// asTransportError normalises any live-source failure.
func asTransportError(err error) *domain.TransportError {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransportError{Detail: "request timed out", Err: err}
	}
	return &domain.TransportError{Detail: err.Error(), Err: err}
}

func (f *Facade) observe(op, outcome string, start time.Time) {
	if f.observer != nil {
		f.observer.ObserveFetch(op, outcome, time.Since(start))
	}
}

// Queries returns a page of the query registry.
func (f *Facade) Queries(
	ctx context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
) (domain.Result[domain.Page[domain.VisibilityQuery]], error) {
	if err := filter.Validate(); err != nil {
		return domain.Result[domain.Page[domain.VisibilityQuery]]{}, err
	}
	req, err := f.cfg.normalize(page)
	if err != nil {
		return domain.Result[domain.Page[domain.VisibilityQuery]]{}, err
	}
	return fetch(ctx, f, "queries", func(ctx context.Context, src driven.VisibilitySource) (domain.Page[domain.VisibilityQuery], error) {
		return src.ListQueries(ctx, filter, req)
	})
}

// Query returns one query.
func (f *Facade) Query(ctx context.Context, id int64) (domain.Result[*domain.VisibilityQuery], error) {
	if id <= 0 {
		return domain.Result[*domain.VisibilityQuery]{}, domain.NewValidationError("query_id", "must be positive")
	}
	return fetch(ctx, f, "query", func(ctx context.Context, src driven.VisibilitySource) (*domain.VisibilityQuery, error) {
		return src.GetQuery(ctx, id)
	})
}

// Rankings returns a page of observations, newest first.
func (f *Facade) Rankings(
	ctx context.Context,
	filter domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Result[domain.Page[domain.RankObservation]], error) {
	if err := filter.Validate(); err != nil {
		return domain.Result[domain.Page[domain.RankObservation]]{}, err
	}
	req, err := f.cfg.normalize(page)
	if err != nil {
		return domain.Result[domain.Page[domain.RankObservation]]{}, err
	}
	return fetch(ctx, f, "rankings", func(ctx context.Context, src driven.VisibilitySource) (domain.Page[domain.RankObservation], error) {
		return src.ListRankings(ctx, filter, req)
	})
}

// Latest returns the latest observation per (platform, brand).
func (f *Facade) Latest(ctx context.Context, queryID int64) (domain.Result[[]domain.RankObservation], error) {
	if queryID <= 0 {
		return domain.Result[[]domain.RankObservation]{}, domain.NewValidationError("query_id", "must be positive")
	}
	return fetch(ctx, f, "latest", func(ctx context.Context, src driven.VisibilitySource) ([]domain.RankObservation, error) {
		return src.LatestRankings(ctx, queryID)
	})
}

// Trends returns a trend series.
func (f *Facade) Trends(ctx context.Context, req domain.TrendRequest) (domain.Result[[]domain.TrendPoint], error) {
	if err := req.Validate(f.cfg.location()); err != nil {
		return domain.Result[[]domain.TrendPoint]{}, err
	}
	return fetch(ctx, f, "trends", func(ctx context.Context, src driven.VisibilitySource) ([]domain.TrendPoint, error) {
		return src.Trends(ctx, req)
	})
}

// Score returns one score record.
func (f *Facade) Score(ctx context.Context, req domain.ScoreRequest) (domain.Result[*domain.ScoreRecord], error) {
	if err := req.Validate(); err != nil {
		return domain.Result[*domain.ScoreRecord]{}, err
	}
	return fetch(ctx, f, "score", func(ctx context.Context, src driven.VisibilitySource) (*domain.ScoreRecord, error) {
		return src.Score(ctx, req)
	})
}

// Scores returns a page of score records.
func (f *Facade) Scores(
	ctx context.Context,
	filter domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Result[domain.Page[domain.ScoreRecord]], error) {
	if err := filter.Validate(); err != nil {
		return domain.Result[domain.Page[domain.ScoreRecord]]{}, err
	}
	req, err := f.cfg.normalize(page)
	if err != nil {
		return domain.Result[domain.Page[domain.ScoreRecord]]{}, err
	}
	return fetch(ctx, f, "scores", func(ctx context.Context, src driven.VisibilitySource) (domain.Page[domain.ScoreRecord], error) {
		return src.ListScores(ctx, filter, req)
	})
}

// Comparison returns the comparison table.
func (f *Facade) Comparison(ctx context.Context, filter domain.ComparisonFilter) (domain.Result[[]domain.ComparisonRow], error) {
	if err := filter.Validate(); err != nil {
		return domain.Result[[]domain.ComparisonRow]{}, err
	}
	return fetch(ctx, f, "comparison", func(ctx context.Context, src driven.VisibilitySource) ([]domain.ComparisonRow, error) {
		return src.Comparison(ctx, filter)
	})
}

// Snapshot returns a raw answer snapshot.
func (f *Facade) Snapshot(ctx context.Context, id string) (domain.Result[*domain.Snapshot], error) {
	if id == "" {
		return domain.Result[*domain.Snapshot]{}, domain.NewValidationError("snapshot_id", "is required")
	}
	return fetch(ctx, f, "snapshot", func(ctx context.Context, src driven.VisibilitySource) (*domain.Snapshot, error) {
		return src.Snapshot(ctx, id)
	})
}

// Overview fetches the registry page and the comparison table concurrently.
// Each section is wrapped on its own. When a section falls back or fails
// outright while the other succeeds, the overview is still returned with a
// *domain.PartialAggregationError naming it. Only validation and not-found
// errors, or both sections failing, return no overview.
func (f *Facade) Overview(
	ctx context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
	cmp domain.ComparisonFilter,
) (*domain.Overview, error) {
	var (
		overview domain.Overview
		errs     [2]error
		g        errgroup.Group
	)
	g.Go(func() error {
		overview.Queries, errs[0] = f.Queries(ctx, filter, page)
		return localOnly(errs[0])
	})
	g.Go(func() error {
		overview.Comparison, errs[1] = f.Comparison(ctx, cmp)
		return localOnly(errs[1])
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections := []struct {
		name     string
		fallback bool
		err      error
	}{
		{SectionQueries, overview.Queries.IsFallback(), errs[0]},
		{SectionComparison, overview.Comparison.IsFallback(), errs[1]},
	}
	partial := &domain.PartialAggregationError{}
	for _, sec := range sections {
		switch {
		case sec.err != nil:
			logger.Warn("overview: %s unavailable: %v", sec.name, sec.err)
			overview.Missing = append(overview.Missing, sec.name)
			partial.Sections = append(partial.Sections, sec.name)
			partial.Causes = append(partial.Causes, sec.err)
		case sec.fallback:
			partial.Sections = append(partial.Sections, sec.name)
		}
	}

	switch {
	case len(overview.Missing) == len(sections):
		return nil, errors.Join(partial.Causes...)
	case len(overview.Missing) > 0, len(partial.Sections) == 1:
		return &overview, partial
	}
	return &overview, nil
}

// localOnly keeps the errors that abort a joint fetch.
func localOnly(err error) error {
	if domain.IsLocalError(err) {
		return err
	}
	return nil
}
