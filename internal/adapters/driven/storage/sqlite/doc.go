// Package sqlite stores geovis data in a single SQLite file using
// modernc.org/sqlite, which needs no CGO.
//
// One Store backs four driven ports:
//
//   - QueryStore: monitored query registry
//   - RankingStore: append-only rank observations
//   - SnapshotStore: content-addressed raw answer snapshots
//   - SchedulerStore: cache-warm task state and run history
//
// # Schema
//
// Migrations live in migrations/ as NNN_name.up.sql and NNN_name.down.sql
// pairs. Each up file is applied in one transaction with its
// schema_migrations row.
//
// By default the database is ~/.geovis/data/geovis.db. Connections run in
// WAL mode with foreign keys enforced.
package sqlite
