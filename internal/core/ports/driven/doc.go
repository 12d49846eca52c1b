// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - QueryStore: Monitored query persistence
//   - RankingStore: Append-only rank observation persistence
//   - SnapshotStore: Content-addressed answer snapshots
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ResultCache: Caches latest rankings and comparison tables. Without it every read recomputes.
//   - VisibilitySource: Remote observation source. Without it the local engine is the live source.
//   - SchedulerStore: Persists background task state. Without it the scheduler is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
