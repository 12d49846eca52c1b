package domain

import "slices"

// IngestBatch is one upstream delivery of observations, optionally with the
// raw answer snapshots they were extracted from.
type IngestBatch struct {
	// SourceRunID tags every observation; assigned when empty.
	SourceRunID string

	Observations []RankObservation
	Snapshots    []Snapshot
}

// IngestResult reports what an ingest stored.
type IngestResult struct {
	RunID string

	// Observations are the stored rows with IDs assigned.
	Observations []RankObservation

	// Snapshots counts the snapshots written.
	Snapshots int
}

// Overview is the dashboard's joint fetch: the query registry page and the
// comparison table. Each section carries its own live/fallback tag.
// Sections named in Missing had no data at all and hold zero values.
type Overview struct {
	Queries    Result[Page[VisibilityQuery]]
	Comparison Result[[]ComparisonRow]
	Missing    []string
}

// Has reports whether section carries data.
func (o *Overview) Has(section string) bool {
	return !slices.Contains(o.Missing, section)
}
