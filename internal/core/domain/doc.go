// Package domain defines the core business entities for geovis.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - VisibilityQuery: A monitored search query with its tracked brands
//   - RankObservation: One brand's position on one platform at one time
//   - ScoreRecord: A derived visibility score for a query/brand/period
//   - TrendPoint: One bucket of a brand's rank/score time series
//   - ComparisonRow: Every tracked brand's score for one query
//   - Result: The live/fallback tagged envelope returned by the facade
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
