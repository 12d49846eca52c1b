// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// All aggregation lives here: the registry, observation projections,
// trend bucketing, scoring and the comparison table. Engine composes them
// into a VisibilitySource and Facade puts the live/fallback contract in
// front of any source.
package services
