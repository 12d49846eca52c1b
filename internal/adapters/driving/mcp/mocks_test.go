package mcp

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ensure mockFacade implements the interface.
var _ driving.VisibilityFacade = (*mockFacade)(nil)

// mockFacade is a mock implementation of driving.VisibilityFacade that
// records the last request of each kind.
type mockFacade struct {
	queries    domain.Result[domain.Page[domain.VisibilityQuery]]
	latest     domain.Result[[]domain.RankObservation]
	trends     domain.Result[[]domain.TrendPoint]
	score      domain.Result[*domain.ScoreRecord]
	comparison domain.Result[[]domain.ComparisonRow]
	snapshot   domain.Result[*domain.Snapshot]
	err        error

	lastQueryFilter domain.QueryFilter
	lastTrends      domain.TrendRequest
	lastScore       domain.ScoreRequest
	lastComparison  domain.ComparisonFilter
	lastLatest      int64
	lastSnapshot    string
}

func (m *mockFacade) Queries(
	_ context.Context, filter domain.QueryFilter, _ domain.PageRequest,
) (domain.Result[domain.Page[domain.VisibilityQuery]], error) {
	m.lastQueryFilter = filter
	return m.queries, m.err
}

func (m *mockFacade) Query(_ context.Context, _ int64) (domain.Result[*domain.VisibilityQuery], error) {
	return domain.Result[*domain.VisibilityQuery]{}, m.err
}

func (m *mockFacade) Rankings(
	_ context.Context, _ domain.ObservationFilter, _ domain.PageRequest,
) (domain.Result[domain.Page[domain.RankObservation]], error) {
	return domain.Result[domain.Page[domain.RankObservation]]{}, m.err
}

func (m *mockFacade) Latest(_ context.Context, queryID int64) (domain.Result[[]domain.RankObservation], error) {
	m.lastLatest = queryID
	return m.latest, m.err
}

func (m *mockFacade) Trends(_ context.Context, req domain.TrendRequest) (domain.Result[[]domain.TrendPoint], error) {
	m.lastTrends = req
	return m.trends, m.err
}

func (m *mockFacade) Score(_ context.Context, req domain.ScoreRequest) (domain.Result[*domain.ScoreRecord], error) {
	m.lastScore = req
	return m.score, m.err
}

func (m *mockFacade) Scores(
	_ context.Context, _ domain.ScoreFilter, _ domain.PageRequest,
) (domain.Result[domain.Page[domain.ScoreRecord]], error) {
	return domain.Result[domain.Page[domain.ScoreRecord]]{}, m.err
}

func (m *mockFacade) Comparison(
	_ context.Context, filter domain.ComparisonFilter,
) (domain.Result[[]domain.ComparisonRow], error) {
	m.lastComparison = filter
	return m.comparison, m.err
}

func (m *mockFacade) Snapshot(_ context.Context, id string) (domain.Result[*domain.Snapshot], error) {
	m.lastSnapshot = id
	return m.snapshot, m.err
}

func (m *mockFacade) Overview(
	_ context.Context, _ domain.QueryFilter, _ domain.PageRequest, _ domain.ComparisonFilter,
) (*domain.Overview, error) {
	return &domain.Overview{Queries: m.queries, Comparison: m.comparison}, m.err
}

func ptr[T any](v T) *T { return &v }

func unavailable() *domain.TransportError {
	return &domain.TransportError{Status: 503, Detail: "service unavailable"}
}
