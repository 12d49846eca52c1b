// Package messages defines Bubbletea message types for the dashboard.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/services"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewComparison is the brand comparison table.
	ViewComparison
	// ViewTrends shows the trend series of one query.
	ViewTrends
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewComparison:
		return "comparison"
	case ViewTrends:
		return "trends"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ComparisonLoaded carries the comparison table.
type ComparisonLoaded struct {
	Result domain.Result[[]domain.ComparisonRow]
	Err    error
}

// QuerySelected signals a comparison row was chosen for the trends view.
type QuerySelected struct {
	QueryID   int64
	QueryText string
	Brands    []string
}

// TrendsLoaded carries a trend series fetched for Tag.
type TrendsLoaded struct {
	Tag    services.Selection
	Result domain.Result[[]domain.TrendPoint]
	Err    error
}

// LatestLoaded carries the latest rankings fetched for Tag.
type LatestLoaded struct {
	Tag    services.Selection
	Result domain.Result[[]domain.RankObservation]
	Err    error
}
