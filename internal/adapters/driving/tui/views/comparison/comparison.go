// Package comparison provides the brand comparison table view.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Order is the row ordering of the table.
type Order int

const (
	OrderByID Order = iota
	OrderByGap
	OrderByScore
)

// String returns the label shown in the title.
func (o Order) String() string {
	switch o {
	case OrderByGap:
		return "gap"
	case OrderByScore:
		return "score"
	default:
		return "query"
	}
}

// View is the comparison table view.
type View struct {
	styles *styles.Styles
	facade driving.VisibilityFacade
	ctx    context.Context

	rows         []domain.ComparisonRow
	ordered      []domain.ComparisonRow
	order        Order
	fallback     *domain.TransportError
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new comparison view.
func NewView(s *styles.Styles, facade driving.VisibilityFacade) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		facade: facade,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for fetches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the table.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.err = nil
	return v.load()
}

func (v *View) load() tea.Cmd {
	facade := v.facade
	ctx := v.ctx
	return func() tea.Msg {
		if facade == nil {
			return messages.ComparisonLoaded{Err: errors.New("visibility facade not available")}
		}
		result, err := facade.Comparison(ctx, domain.ComparisonFilter{})
		return messages.ComparisonLoaded{Result: result, Err: err}
	}
}

// Update handles messages for the comparison view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ComparisonLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.rows = msg.Result.Data
		v.fallback = nil
		if msg.Result.IsFallback() {
			v.fallback = msg.Result.Err
		}
		v.applyOrder()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.ordered)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "s":
		v.order = (v.order + 1) % 3
		v.applyOrder()
	case "r":
		return v, v.Init()
	case "enter":
		if row := v.SelectedRow(); row != nil {
			selected := messages.QuerySelected{
				QueryID:   row.QueryID,
				QueryText: row.QueryText,
				Brands:    append([]string(nil), row.Brands...),
			}
			return v, func() tea.Msg { return selected }
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// applyOrder rebuilds the displayed rows from the loaded rows.
func (v *View) applyOrder() {
	switch v.order {
	case OrderByGap:
		v.ordered = domain.SortByGap(v.rows)
	case OrderByScore:
		v.ordered = domain.SortByPrimaryScore(v.rows)
	default:
		v.ordered = v.rows
	}
	if v.selected >= len(v.ordered) {
		v.selected = max(0, len(v.ordered)-1)
	}
	v.adjustScroll()
}

// adjustScroll keeps the selected row visible.
func (v *View) adjustScroll() {
	visible := v.visibleRowCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleRowCount returns the number of rows that fit on screen.
func (v *View) visibleRowCount() int {
	// Title, banner, header, scroll indicator and help
	reserved := 10
	return max(1, v.height-reserved)
}

// View renders the comparison table.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Brand Comparison (%d queries, by %s)", len(v.ordered), v.order)))
	b.WriteString("\n\n")

	if banner := status.Banner(v.styles, v.fallback); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading comparison..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.ordered) == 0:
		b.WriteString(v.styles.Muted.Render("No active queries."))
	default:
		v.renderTable(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] trends  [s] sort  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderTable(b *strings.Builder) {
	textWidth := v.queryWidth()
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("  %-*s  %8s  %7s  %s", textWidth, "QUERY", "PRIMARY", "GAP", "COMPETITORS")))
	b.WriteString("\n")

	visible := v.visibleRowCount()
	end := min(len(v.ordered), v.scrollOffset+visible)
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderRow(i, &v.ordered[i], textWidth))
		b.WriteString("\n")
	}

	if len(v.ordered) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.ordered))))
	}
}

func (v *View) renderRow(index int, row *domain.ComparisonRow, textWidth int) string {
	text := truncate(row.QueryText, textWidth)

	if index == v.selected {
		line := fmt.Sprintf("> %-*s  %8.2f  %+7.2f  %s", textWidth, text, row.PrimaryScore(), row.CompetitiveGap, plainCompetitors(row))
		return v.styles.Selected.Render(line)
	}

	primary := fmt.Sprintf("%8.2f", row.PrimaryScore())
	if len(row.Brands) > 0 {
		primary = v.styles.Brand(0, primary)
	}

	gap := fmt.Sprintf("%+7.2f", row.CompetitiveGap)
	if row.CompetitiveGap < 0 {
		gap = v.styles.Error.Render(gap)
	} else {
		gap = v.styles.Success.Render(gap)
	}

	competitors := make([]string, 0, len(row.Brands))
	for i := 1; i < len(row.Brands); i++ {
		brand := row.Brands[i]
		competitors = append(competitors, v.styles.Brand(i, fmt.Sprintf("%s %.1f", brand, row.ScoreByBrand[brand])))
	}

	return "  " + v.styles.Normal.Render(fmt.Sprintf("%-*s", textWidth, text)) +
		"  " + primary + "  " + gap + "  " + strings.Join(competitors, ", ")
}

func plainCompetitors(row *domain.ComparisonRow) string {
	parts := make([]string, 0, len(row.Brands))
	for i := 1; i < len(row.Brands); i++ {
		brand := row.Brands[i]
		parts = append(parts, fmt.Sprintf("%s %.1f", brand, row.ScoreByBrand[brand]))
	}
	return strings.Join(parts, ", ")
}

func (v *View) queryWidth() int {
	return max(16, v.width/3)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Rows returns the rows in display order.
func (v *View) Rows() []domain.ComparisonRow {
	return v.ordered
}

// Order returns the current row ordering.
func (v *View) Order() Order {
	return v.order
}

// SelectedRow returns the selected row, or nil when the table is empty.
func (v *View) SelectedRow() *domain.ComparisonRow {
	if v.selected < len(v.ordered) {
		return &v.ordered[v.selected]
	}
	return nil
}

// Fallback returns the failure behind substitute data, or nil.
func (v *View) Fallback() *domain.TransportError {
	return v.fallback
}

// Loading reports whether a fetch is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
