package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// baseTime is a Monday.
var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// --- Engine fixture over the in-memory stores ---

type testEnv struct {
	engine    *Engine
	queries   *memory.QueryStore
	rankings  *memory.RankingStore
	snapshots *memory.SnapshotStore
	cfg       Config
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return baseTime }
	return cfg
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	env := &testEnv{
		queries:   memory.NewQueryStore(),
		rankings:  memory.NewRankingStore(),
		snapshots: memory.NewSnapshotStore(),
		cfg:       cfg,
	}
	env.engine = NewEngine(env.queries, env.rankings, env.snapshots, cfg)
	return env
}

func (e *testEnv) createQuery(t *testing.T, text string, brands ...string) *domain.VisibilityQuery {
	t.Helper()
	q, err := e.engine.Queries().Create(context.Background(), domain.QueryCreate{Text: text, Brands: brands})
	require.NoError(t, err)
	return q
}

func (e *testEnv) ingest(t *testing.T, observations ...domain.RankObservation) []domain.RankObservation {
	t.Helper()
	res, err := e.engine.Observations().Append(context.Background(), domain.IngestBatch{Observations: observations})
	require.NoError(t, err)
	return res.Observations
}

func rankAt(queryID int64, platform domain.Platform, brand string, rank int, at time.Time) domain.RankObservation {
	return domain.RankObservation{
		QueryID:      queryID,
		Platform:     platform,
		Brand:        brand,
		RankPosition: rank,
		ScrapedAt:    at,
	}
}

// --- mapCache implements driven.ResultCache for testing ---

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	hits    int
	sets    int
	getErr  error
	deleted []string
}

var _ driven.ResultCache = (*mapCache)(nil)

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, prefix)
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// --- stubSource implements driven.VisibilitySource for facade testing ---

type stubSource struct {
	// errs maps a method name to the error it returns.
	errs  map[string]error
	delay time.Duration
	calls atomic.Int32

	queries []domain.VisibilityQuery
	rows    []domain.ComparisonRow
	latest  []domain.RankObservation
	points  []domain.TrendPoint
}

var _ driven.VisibilitySource = (*stubSource)(nil)

func (s *stubSource) wait(ctx context.Context, method string) error {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err, ok := s.errs[method]; ok {
		return err
	}
	return s.errs["*"]
}

func (s *stubSource) ListQueries(
	ctx context.Context,
	_ domain.QueryFilter,
	page domain.PageRequest,
) (domain.Page[domain.VisibilityQuery], error) {
	if err := s.wait(ctx, "ListQueries"); err != nil {
		return domain.Page[domain.VisibilityQuery]{}, err
	}
	return domain.Paginate(s.queries, page), nil
}

func (s *stubSource) GetQuery(ctx context.Context, id int64) (*domain.VisibilityQuery, error) {
	if err := s.wait(ctx, "GetQuery"); err != nil {
		return nil, err
	}
	for i := range s.queries {
		if s.queries[i].ID == id {
			q := s.queries[i]
			return &q, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubSource) ListRankings(
	ctx context.Context,
	_ domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Page[domain.RankObservation], error) {
	if err := s.wait(ctx, "ListRankings"); err != nil {
		return domain.Page[domain.RankObservation]{}, err
	}
	return domain.Paginate(s.latest, page), nil
}

func (s *stubSource) LatestRankings(ctx context.Context, _ int64) ([]domain.RankObservation, error) {
	if err := s.wait(ctx, "LatestRankings"); err != nil {
		return nil, err
	}
	return s.latest, nil
}

func (s *stubSource) Trends(ctx context.Context, _ domain.TrendRequest) ([]domain.TrendPoint, error) {
	if err := s.wait(ctx, "Trends"); err != nil {
		return nil, err
	}
	return s.points, nil
}

func (s *stubSource) Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error) {
	if err := s.wait(ctx, "Score"); err != nil {
		return nil, err
	}
	return &domain.ScoreRecord{QueryID: req.QueryID, Brand: req.Brand, Period: req.Period}, nil
}

func (s *stubSource) ListScores(
	ctx context.Context,
	_ domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Page[domain.ScoreRecord], error) {
	if err := s.wait(ctx, "ListScores"); err != nil {
		return domain.Page[domain.ScoreRecord]{}, err
	}
	return domain.Paginate([]domain.ScoreRecord{}, page), nil
}

func (s *stubSource) Comparison(ctx context.Context, _ domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	if err := s.wait(ctx, "Comparison"); err != nil {
		return nil, err
	}
	return s.rows, nil
}

func (s *stubSource) Snapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	if err := s.wait(ctx, "Snapshot"); err != nil {
		return nil, err
	}
	return &domain.Snapshot{ID: id}, nil
}

// --- recordingObserver implements driven.FetchObserver for testing ---

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

var _ driven.FetchObserver = (*recordingObserver)(nil)

func (o *recordingObserver) ObserveFetch(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func (o *recordingObserver) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.outcomes...)
}
