// Package trends provides the per-query trend view.
package trends

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/core/services"
)

var granularities = []domain.Granularity{
	domain.GranularityDaily,
	domain.GranularityWeekly,
	domain.GranularityMonthly,
}

// View shows the trend series and latest rankings of one query. Responses
// are applied only while they match the current selection.
type View struct {
	styles  *styles.Styles
	facade  driving.VisibilityFacade
	session *services.Session
	now     func() time.Time
	ctx     context.Context

	queryText   string
	brands      []string
	granularity domain.Granularity

	points         []domain.TrendPoint
	latest         []domain.RankObservation
	trendFallback  *domain.TransportError
	latestFallback *domain.TransportError
	pending        int
	dropped        int
	err            error
	width          int
	height         int
}

// NewView creates a new trends view.
func NewView(s *styles.Styles, facade driving.VisibilityFacade, now func() time.Time) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if now == nil {
		now = time.Now
	}
	return &View{
		styles:      s,
		facade:      facade,
		session:     services.NewSession(services.Selection{}),
		now:         now,
		ctx:         context.Background(),
		granularity: domain.GranularityDaily,
		width:       80,
		height:      24,
	}
}

// WithContext sets the context used for fetches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements the view lifecycle. Fetching starts in SetQuery.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetQuery switches the view to a query and fetches its data.
func (v *View) SetQuery(q messages.QuerySelected) tea.Cmd {
	v.queryText = q.QueryText
	v.brands = append([]string(nil), q.Brands...)
	v.points = nil
	v.latest = nil
	v.trendFallback = nil
	v.latestFallback = nil
	v.err = nil
	return v.fetch(q.QueryID)
}

// fetch makes a new selection current and issues both fetches tagged with it.
func (v *View) fetch(queryID int64) tea.Cmd {
	from, to := v.granularity.Period().DefaultWindow(v.now())
	tag := v.session.Select(services.Selection{
		QueryID:     queryID,
		From:        from,
		To:          to,
		Granularity: v.granularity,
	})
	v.pending = 2

	facade := v.facade
	ctx := v.ctx
	brands := append([]string(nil), v.brands...)

	trends := func() tea.Msg {
		if facade == nil {
			return messages.TrendsLoaded{Tag: tag, Err: errors.New("visibility facade not available")}
		}
		result, err := facade.Trends(ctx, domain.TrendRequest{
			QueryID:     tag.QueryID,
			Brands:      brands,
			From:        tag.From,
			To:          tag.To,
			Granularity: tag.Granularity,
		})
		return messages.TrendsLoaded{Tag: tag, Result: result, Err: err}
	}
	latest := func() tea.Msg {
		if facade == nil {
			return messages.LatestLoaded{Tag: tag, Err: errors.New("visibility facade not available")}
		}
		result, err := facade.Latest(ctx, tag.QueryID)
		return messages.LatestLoaded{Tag: tag, Result: result, Err: err}
	}
	return tea.Batch(trends, latest)
}

// Update handles messages for the trends view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.TrendsLoaded:
		if !v.session.Accept(msg.Tag) {
			v.dropped++
			return v, nil
		}
		v.pending--
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.points = msg.Result.Data
		v.trendFallback = fallbackCause(msg.Result)
		return v, nil

	case messages.LatestLoaded:
		if !v.session.Accept(msg.Tag) {
			v.dropped++
			return v, nil
		}
		v.pending--
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.latest = msg.Result.Data
		v.latestFallback = fallbackCause(msg.Result)
		return v, nil
	}

	return v, nil
}

func fallbackCause[T any](r domain.Result[T]) *domain.TransportError {
	if r.IsFallback() {
		return r.Err
	}
	return nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "g":
		v.granularity = nextGranularity(v.granularity)
		return v, v.fetch(v.session.Current().QueryID)
	case "r":
		return v, v.fetch(v.session.Current().QueryID)
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewComparison}
		}
	}
	return v, nil
}

func nextGranularity(g domain.Granularity) domain.Granularity {
	for i, candidate := range granularities {
		if candidate == g {
			return granularities[(i+1)%len(granularities)]
		}
	}
	return domain.GranularityDaily
}

// View renders the trend view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Trends - %s (%s)", v.queryText, v.granularity)
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if banner := status.Banner(v.styles, v.Fallback()); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n\n")
	}

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case v.pending > 0:
		b.WriteString(v.styles.Muted.Render("Loading trends..."))
	default:
		v.renderLatest(&b)
		b.WriteString("\n")
		v.renderSeries(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[g] granularity  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderLatest(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Latest rankings"))
	b.WriteString("\n")

	if len(v.latest) == 0 {
		b.WriteString(v.styles.Muted.Render("  No observations recorded."))
		b.WriteString("\n")
		return
	}

	byPlatform := make(map[domain.Platform][]domain.RankObservation)
	for _, o := range v.latest {
		byPlatform[o.Platform] = append(byPlatform[o.Platform], o)
	}

	for _, platform := range domain.AllPlatforms() {
		observations := byPlatform[platform]
		if len(observations) == 0 {
			continue
		}
		cells := make([]string, 0, len(observations))
		for _, o := range observations {
			rank := "absent"
			if o.Present() {
				rank = fmt.Sprintf("#%d", o.RankPosition)
			}
			cells = append(cells, v.styles.Brand(v.brandIndex(o.Brand), fmt.Sprintf("%s %s", o.Brand, rank)))
		}
		fmt.Fprintf(b, "  %-11s %s\n", platform, strings.Join(cells, "  "))
	}
}

func (v *View) renderSeries(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Visibility score by bucket"))
	b.WriteString("\n")

	if len(v.points) == 0 {
		b.WriteString(v.styles.Muted.Render("  No trend data in this window."))
		return
	}

	buckets, cells := pivot(v.points)

	header := fmt.Sprintf("  %-10s", "BUCKET")
	for i, brand := range v.brands {
		header += "  " + v.styles.Brand(i, fmt.Sprintf("%10s", truncate(brand, 10)))
	}
	b.WriteString(header)
	b.WriteString("\n")

	// Most recent buckets when the series is taller than the screen.
	visible := max(1, v.height-12-len(v.latest))
	start := max(0, len(buckets)-visible)
	for _, bucket := range buckets[start:] {
		line := fmt.Sprintf("  %-10s", bucket.Format(time.DateOnly))
		for _, brand := range v.brands {
			point, ok := cells[cellKey{bucket.Unix(), brand}]
			switch {
			case !ok || point.SampleCount == 0:
				line += fmt.Sprintf("  %10s", "-")
			default:
				line += fmt.Sprintf("  %10.1f", point.AvgScore)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

type cellKey struct {
	bucket int64
	brand  string
}

// pivot groups points by bucket. Buckets are returned in ascending order.
func pivot(points []domain.TrendPoint) ([]time.Time, map[cellKey]domain.TrendPoint) {
	cells := make(map[cellKey]domain.TrendPoint, len(points))
	seen := make(map[int64]bool)
	var buckets []time.Time
	for _, p := range points {
		key := cellKey{p.Timestamp.Unix(), p.Brand}
		cells[key] = p
		if !seen[key.bucket] {
			seen[key.bucket] = true
			buckets = append(buckets, p.Timestamp)
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })
	return buckets, cells
}

func (v *View) brandIndex(brand string) int {
	for i, b := range v.brands {
		if strings.EqualFold(b, brand) {
			return i
		}
	}
	return len(v.brands)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Selection returns the current selection.
func (v *View) Selection() services.Selection {
	return v.session.Current()
}

// Granularity returns the current trend granularity.
func (v *View) Granularity() domain.Granularity {
	return v.granularity
}

// Points returns the applied trend series.
func (v *View) Points() []domain.TrendPoint {
	return v.points
}

// Latest returns the applied latest rankings.
func (v *View) Latest() []domain.RankObservation {
	return v.latest
}

// Fallback returns the failure behind substitute data, or nil when every
// section on screen is live.
func (v *View) Fallback() *domain.TransportError {
	if v.trendFallback != nil {
		return v.trendFallback
	}
	return v.latestFallback
}

// Dropped returns the number of stale responses discarded.
func (v *View) Dropped() int {
	return v.dropped
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
