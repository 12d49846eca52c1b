package trends

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// mockFacade answers trend and latest requests per query id.
type mockFacade struct {
	driving.VisibilityFacade

	mu       sync.Mutex
	trends   map[int64]domain.Result[[]domain.TrendPoint]
	latest   map[int64]domain.Result[[]domain.RankObservation]
	err      error
	requests []domain.TrendRequest
}

func (m *mockFacade) Trends(_ context.Context, req domain.TrendRequest) (domain.Result[[]domain.TrendPoint], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.trends[req.QueryID], m.err
}

func (m *mockFacade) Latest(_ context.Context, queryID int64) (domain.Result[[]domain.RankObservation], error) {
	return m.latest[queryID], m.err
}

func newFacade() *mockFacade {
	day := testNow.Truncate(24 * time.Hour)
	return &mockFacade{
		trends: map[int64]domain.Result[[]domain.TrendPoint]{
			1: domain.Live([]domain.TrendPoint{
				{Timestamp: day.AddDate(0, 0, -1), Brand: "Levoit", AvgRank: 1, AvgScore: 100, SampleCount: 3},
				{Timestamp: day.AddDate(0, 0, -1), Brand: "Dyson", AvgRank: 2, AvgScore: 75, SampleCount: 3},
				{Timestamp: day, Brand: "Levoit", AvgRank: 2, AvgScore: 75, SampleCount: 3},
				{Timestamp: day, Brand: "Dyson", AvgRank: domain.AbsentRank, AvgScore: 0, SampleCount: 0},
			}),
			2: domain.Live([]domain.TrendPoint{
				{Timestamp: day, Brand: "Coway", AvgRank: 3, AvgScore: 50, SampleCount: 1},
			}),
		},
		latest: map[int64]domain.Result[[]domain.RankObservation]{
			1: domain.Live([]domain.RankObservation{
				{QueryID: 1, Platform: domain.PlatformChatGPT, Brand: "Levoit", RankPosition: 2},
				{QueryID: 1, Platform: domain.PlatformChatGPT, Brand: "Dyson", RankPosition: domain.RankAbsent},
			}),
			2: domain.Live([]domain.RankObservation{
				{QueryID: 2, Platform: domain.PlatformPerplexity, Brand: "Coway", RankPosition: 3},
			}),
		},
	}
}

// run executes cmd and returns the messages it produced, expanding batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, run(c)...)
	}
	return out
}

func apply(view *View, msgs []tea.Msg) {
	for _, msg := range msgs {
		view.Update(msg)
	}
}

func newView(facade *mockFacade) *View {
	view := NewView(nil, facade, func() time.Time { return testNow })
	view.SetDimensions(120, 60)
	return view
}

var (
	queryOne = messages.QuerySelected{QueryID: 1, QueryText: "best air purifier", Brands: []string{"Levoit", "Dyson"}}
	queryTwo = messages.QuerySelected{QueryID: 2, QueryText: "quiet purifier", Brands: []string{"Levoit", "Coway"}}
)

func TestNewView_Defaults(t *testing.T) {
	view := NewView(nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.now)
	assert.Equal(t, domain.GranularityDaily, view.Granularity())
	assert.Nil(t, view.Init())
}

func TestView_SetQuery_FetchesDefaultWindow(t *testing.T) {
	facade := newFacade()
	view := newView(facade)

	apply(view, run(view.SetQuery(queryOne)))

	require.Len(t, facade.requests, 1)
	req := facade.requests[0]
	assert.Equal(t, int64(1), req.QueryID)
	assert.Equal(t, []string{"Levoit", "Dyson"}, req.Brands)
	assert.Equal(t, testNow.AddDate(0, 0, -30), req.From)
	assert.Equal(t, testNow, req.To)
	assert.Equal(t, domain.GranularityDaily, req.Granularity)

	assert.Len(t, view.Points(), 4)
	assert.Len(t, view.Latest(), 2)
	assert.Nil(t, view.Fallback())
	assert.Zero(t, view.Dropped())
}

func TestView_StaleResponseIsDropped(t *testing.T) {
	view := newView(newFacade())

	// Fetch A is issued, then fetch B before A resolves.
	cmdA := view.SetQuery(queryOne)
	cmdB := view.SetQuery(queryTwo)

	// B resolves first, then A.
	apply(view, run(cmdB))
	apply(view, run(cmdA))

	assert.Equal(t, int64(2), view.Selection().QueryID)
	require.Len(t, view.Points(), 1)
	assert.Equal(t, "Coway", view.Points()[0].Brand)
	require.Len(t, view.Latest(), 1)
	assert.Equal(t, "Coway", view.Latest()[0].Brand)
	assert.Equal(t, 2, view.Dropped())
}

func TestView_StaleResponseDroppedWhenResolvedInOrder(t *testing.T) {
	view := newView(newFacade())

	cmdA := view.SetQuery(queryOne)
	msgsA := run(cmdA)
	cmdB := view.SetQuery(queryTwo)

	apply(view, msgsA)
	apply(view, run(cmdB))

	assert.Equal(t, "Coway", view.Points()[0].Brand)
	assert.Equal(t, 2, view.Dropped())
}

func TestView_GranularityCycles(t *testing.T) {
	facade := newFacade()
	view := newView(facade)
	apply(view, run(view.SetQuery(queryOne)))

	g := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}

	_, cmd := view.Update(g)
	apply(view, run(cmd))
	assert.Equal(t, domain.GranularityWeekly, view.Granularity())
	assert.Equal(t, domain.GranularityWeekly, view.Selection().Granularity)
	assert.Equal(t, testNow.AddDate(0, 0, -84), facade.requests[1].From)

	_, cmd = view.Update(g)
	apply(view, run(cmd))
	assert.Equal(t, domain.GranularityMonthly, view.Granularity())
	assert.Equal(t, testNow.AddDate(0, -12, 0), facade.requests[2].From)

	_, cmd = view.Update(g)
	apply(view, run(cmd))
	assert.Equal(t, domain.GranularityDaily, view.Granularity())
	assert.Equal(t, int64(1), facade.requests[3].QueryID)
}

func TestView_ResponseForOldGranularityIsDropped(t *testing.T) {
	view := newView(newFacade())
	apply(view, run(view.SetQuery(queryOne)))

	_, daily := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	_, weekly := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})

	apply(view, run(weekly))
	apply(view, run(daily))

	assert.Equal(t, 2, view.Dropped())
	assert.Equal(t, domain.GranularityWeekly, view.Selection().Granularity)
}

func TestView_Fallback(t *testing.T) {
	cause := &domain.TransportError{Status: 502, Detail: "bad gateway"}
	facade := newFacade()
	facade.latest[1] = domain.Fallback(facade.latest[1].Data, cause)
	view := newView(facade)

	apply(view, run(view.SetQuery(queryOne)))

	assert.Equal(t, cause, view.Fallback())
	assert.Contains(t, view.View(), "SUBSTITUTE DATA")
	assert.Contains(t, view.View(), "bad gateway")
}

func TestView_Error(t *testing.T) {
	facade := newFacade()
	facade.err = domain.ErrNotFound
	view := newView(facade)

	apply(view, run(view.SetQuery(queryOne)))

	assert.ErrorIs(t, view.Err(), domain.ErrNotFound)
	assert.Contains(t, view.View(), "Error:")
}

func TestView_NoFacade(t *testing.T) {
	view := NewView(nil, nil, func() time.Time { return testNow })

	apply(view, run(view.SetQuery(queryOne)))

	require.Error(t, view.Err())
}

func TestView_Loading(t *testing.T) {
	view := newView(newFacade())

	view.SetQuery(queryOne)

	assert.Contains(t, view.View(), "Loading trends...")
}

func TestView_View_RendersSeries(t *testing.T) {
	view := newView(newFacade())
	apply(view, run(view.SetQuery(queryOne)))

	output := view.View()

	assert.Contains(t, output, "Trends - best air purifier (daily)")
	assert.Contains(t, output, "Latest rankings")
	assert.Contains(t, output, "Levoit #2")
	assert.Contains(t, output, "Dyson absent")
	assert.Contains(t, output, "2025-03-09")
	assert.Contains(t, output, "2025-03-10")
	assert.Contains(t, output, "100.0")
	assert.Contains(t, output, "75.0")
	assert.NotContains(t, output, "SUBSTITUTE DATA")
}

func TestView_Esc_ReturnsToComparison(t *testing.T) {
	view := newView(newFacade())

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewComparison}, cmd())
}

func TestPivot(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.TrendPoint{
		{Timestamp: day.AddDate(0, 0, 1), Brand: "A", AvgScore: 10, SampleCount: 1},
		{Timestamp: day, Brand: "A", AvgScore: 20, SampleCount: 1},
		{Timestamp: day, Brand: "B", AvgScore: 30, SampleCount: 1},
	}

	buckets, cells := pivot(points)

	require.Len(t, buckets, 2)
	assert.Equal(t, day, buckets[0])
	assert.Equal(t, 30.0, cells[cellKey{day.Unix(), "B"}].AvgScore)
}

func TestNextGranularity(t *testing.T) {
	assert.Equal(t, domain.GranularityWeekly, nextGranularity(domain.GranularityDaily))
	assert.Equal(t, domain.GranularityDaily, nextGranularity(domain.GranularityMonthly))
	assert.Equal(t, domain.GranularityDaily, nextGranularity("hourly"))
}

func TestView_ErrorMessageDoesNotLeakAcrossQueries(t *testing.T) {
	facade := newFacade()
	facade.err = errors.New("boom")
	view := newView(facade)
	apply(view, run(view.SetQuery(queryOne)))
	require.Error(t, view.Err())

	facade.err = nil
	apply(view, run(view.SetQuery(queryTwo)))

	assert.NoError(t, view.Err())
}
