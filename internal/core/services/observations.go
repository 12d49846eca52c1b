package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure ObservationService implements the interface.
var _ driving.ObservationService = (*ObservationService)(nil)

// ObservationService reads and appends rank observations.
type ObservationService struct {
	rankings  driven.RankingStore
	queries   driven.QueryStore
	snapshots driven.SnapshotStore
	cache     driven.ResultCache
	cfg       Config
}

// NewObservationService creates a new observation service.
// snapshots may be nil, in which case attached snapshots are skipped.
func NewObservationService(
	rankings driven.RankingStore,
	queries driven.QueryStore,
	snapshots driven.SnapshotStore,
	cfg Config,
) *ObservationService {
	return &ObservationService{
		rankings:  rankings,
		queries:   queries,
		snapshots: snapshots,
		cfg:       cfg,
	}
}

// SetCache sets the cache for latest projections.
func (s *ObservationService) SetCache(cache driven.ResultCache) {
	s.cache = cache
}

// List returns a page of observations, newest first.
func (s *ObservationService) List(
	ctx context.Context,
	filter domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Page[domain.RankObservation], error) {
	if s.rankings == nil {
		return domain.Page[domain.RankObservation]{}, domain.ErrNotImplemented
	}
	if err := filter.Validate(); err != nil {
		return domain.Page[domain.RankObservation]{}, err
	}
	req, err := s.cfg.normalize(page)
	if err != nil {
		return domain.Page[domain.RankObservation]{}, err
	}
	observations, err := s.rankings.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.RankObservation]{}, fmt.Errorf("listing rankings: %w", err)
	}
	return domain.Paginate(observations, req), nil
}

// Latest returns one observation per observed (platform, brand). Keys that
// were never observed are omitted.
func (s *ObservationService) Latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	if err := s.requireQuery(ctx, queryID); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, latestKey(queryID), s.cfg.cacheTTL(), func(ctx context.Context) ([]domain.RankObservation, error) {
		return s.latest(ctx, queryID)
	})
}

// refreshLatest recomputes and re-caches the latest projection.
func (s *ObservationService) refreshLatest(ctx context.Context, queryID int64) error {
	latest, err := s.latest(ctx, queryID)
	if err != nil {
		return err
	}
	store(ctx, s.cache, latestKey(queryID), s.cfg.cacheTTL(), latest)
	return nil
}

func (s *ObservationService) latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	latest, err := s.rankings.Latest(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("latest rankings for query %d: %w", queryID, err)
	}
	if latest == nil {
		latest = []domain.RankObservation{}
	}
	return latest, nil
}

// Trends buckets the query's history over [From, To). From is floored to
// the start of its bucket. Every (bucket, brand) yields a point; buckets
// without observations have SampleCount 0.
func (s *ObservationService) Trends(ctx context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error) {
	if s.rankings == nil || s.queries == nil {
		return nil, domain.ErrNotImplemented
	}
	loc := s.cfg.location()
	if err := req.Validate(loc); err != nil {
		return nil, err
	}
	query, err := s.queries.Get(ctx, req.QueryID)
	if err != nil {
		return nil, err
	}
	brands, err := selectBrands(query, req.Brands)
	if err != nil {
		return nil, err
	}

	starts := req.Granularity.Buckets(req.From, req.To, loc)
	observations, err := s.rankings.List(ctx, domain.ObservationFilter{
		QueryID: req.QueryID,
		From:    starts[0],
		To:      req.To,
	})
	if err != nil {
		return nil, fmt.Errorf("loading observations for trends: %w", err)
	}

	logger.Debug("Trends query=%d buckets=%d brands=%d observations=%d",
		req.QueryID, len(starts), len(brands), len(observations))
	series := bucketize(observations, brands, starts, req.Granularity, loc, s.cfg.Model)
	return series.flatten(brands), nil
}

// Append validates and stores an upstream batch. Every observation must
// reference an existing query and one of its tracked brands. Attached
// snapshots are stored by content address and linked to observations of
// the same query and platform that carry no snapshot ID.
func (s *ObservationService) Append(ctx context.Context, batch domain.IngestBatch) (*domain.IngestResult, error) {
	if s.rankings == nil || s.queries == nil {
		return nil, domain.ErrNotImplemented
	}
	if len(batch.Observations) == 0 {
		return nil, domain.NewValidationError("observations", "must not be empty")
	}

	runID := batch.SourceRunID
	if runID == "" {
		runID = uuid.NewString()
	}

	queries := make(map[int64]*domain.VisibilityQuery)
	observations := make([]domain.RankObservation, len(batch.Observations))
	for i, o := range batch.Observations {
		o.Brand = strings.TrimSpace(o.Brand)
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		query, ok := queries[o.QueryID]
		if !ok {
			q, err := s.queries.Get(ctx, o.QueryID)
			if err != nil {
				return nil, fmt.Errorf("observation %d: query %d: %w", i, o.QueryID, err)
			}
			query = q
			queries[o.QueryID] = q
		}
		if !query.Tracks(o.Brand) {
			return nil, fmt.Errorf("observation %d: %w", i,
				domain.NewValidationError("brand", fmt.Sprintf("%q is not tracked by query %d", o.Brand, o.QueryID)))
		}
		if o.SourceRunID == "" {
			o.SourceRunID = runID
		}
		o.ID = 0
		observations[i] = o
	}

	written, err := s.saveSnapshots(ctx, batch.Snapshots, queries, observations)
	if err != nil {
		return nil, err
	}

	stored, err := s.rankings.Append(ctx, observations)
	if err != nil {
		return nil, fmt.Errorf("appending observations: %w", err)
	}

	prefixes := []string{comparisonKeyPrefix}
	for id := range queries {
		prefixes = append(prefixes, latestKey(id))
	}
	invalidate(ctx, s.cache, prefixes...)

	logger.Info("Ingested run %s: %d observations, %d snapshots", runID, len(stored), written)
	return &domain.IngestResult{RunID: runID, Observations: stored, Snapshots: written}, nil
}

func (s *ObservationService) saveSnapshots(
	ctx context.Context,
	snapshots []domain.Snapshot,
	queries map[int64]*domain.VisibilityQuery,
	observations []domain.RankObservation,
) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	if s.snapshots == nil {
		logger.Warn("No snapshot store configured, skipping %d snapshots", len(snapshots))
		return 0, nil
	}

	type link struct {
		queryID  int64
		platform domain.Platform
	}
	links := make(map[link]string, len(snapshots))
	for i := range snapshots {
		snap := snapshots[i]
		if err := validateSnapshot(&snap); err != nil {
			return 0, fmt.Errorf("snapshot %d: %w", i, err)
		}
		if q, ok := queries[snap.QueryID]; ok && snap.QueryText == "" {
			snap.QueryText = q.Text
		}
		snap.Seal()
		if err := s.snapshots.Save(ctx, snap); err != nil {
			return 0, fmt.Errorf("saving snapshot %s: %w", snap.ID, err)
		}
		links[link{snap.QueryID, snap.Platform}] = snap.ID
	}

	for i := range observations {
		if observations[i].SnapshotID != "" {
			continue
		}
		if id, ok := links[link{observations[i].QueryID, observations[i].Platform}]; ok {
			observations[i].SnapshotID = id
		}
	}
	return len(snapshots), nil
}

func validateSnapshot(snap *domain.Snapshot) error {
	if snap.QueryID <= 0 {
		return domain.NewValidationError("query_id", "must be positive")
	}
	if !snap.Platform.IsValid() {
		return domain.NewValidationError("platform", "unknown platform "+snap.Platform.String())
	}
	if snap.RawContent == "" {
		return domain.NewValidationError("raw_content", "must not be empty")
	}
	if snap.ScrapedAt.IsZero() {
		return domain.NewValidationError("scraped_at", "is required")
	}
	return nil
}

func (s *ObservationService) requireQuery(ctx context.Context, queryID int64) error {
	if s.rankings == nil || s.queries == nil {
		return domain.ErrNotImplemented
	}
	if queryID <= 0 {
		return domain.NewValidationError("query_id", "must be positive")
	}
	_, err := s.queries.Get(ctx, queryID)
	return err
}

// selectBrands returns requested in tracked order, or every tracked brand
// when requested is empty.
func selectBrands(query *domain.VisibilityQuery, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return query.TrackedBrands, nil
	}
	want := make(map[string]bool, len(requested))
	for _, b := range requested {
		if !query.Tracks(b) {
			return nil, domain.NewValidationError("brands", fmt.Sprintf("%q is not tracked by query %d", b, query.ID))
		}
		want[b] = true
	}
	out := make([]string, 0, len(want))
	for _, b := range query.TrackedBrands {
		if want[b] {
			out = append(out, b)
		}
	}
	return out, nil
}

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// SnapshotService serves raw answer snapshots.
type SnapshotService struct {
	store driven.SnapshotStore
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(store driven.SnapshotStore) *SnapshotService {
	return &SnapshotService{store: store}
}

// Get retrieves a snapshot by content address.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("snapshot_id", "is required")
	}
	return s.store.Get(ctx, id)
}
