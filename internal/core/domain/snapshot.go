package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Snapshot is the raw answer captured from a platform, addressed by the
// hash of its content so identical answers share one snapshot.
type Snapshot struct {
	// ID is the content address, see ContentAddress.
	ID string

	QueryID   int64
	Platform  Platform
	QueryText string

	RawContent  string
	ContentHash string

	ScrapedAt        time.Time
	ScrapeDurationMs int64

	Metadata SnapshotMetadata
}

// SnapshotMetadata records how the snapshot was fetched.
type SnapshotMetadata struct {
	URL           string
	StatusCode    int
	ContentLength int
}

// ContentAddress returns the hex SHA-256 of raw content.
func ContentAddress(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Seal fills ContentHash and ID from RawContent.
func (s *Snapshot) Seal() {
	s.ContentHash = ContentAddress(s.RawContent)
	s.ID = s.ContentHash
	if s.Metadata.ContentLength == 0 {
		s.Metadata.ContentLength = len(s.RawContent)
	}
}
