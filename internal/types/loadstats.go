// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import "time"

// LoadStats describes how an observation source was read.
type LoadStats struct {
	Rows         int64         // Rows read from the source
	Observations int64         // Rows kept as observations
	DroppedRows  int64         // Rows dropped for a missing item or unparseable date
	Pages        int           // Keyset pages fetched (MySQL sources only)
	Duration     time.Duration // Time spent loading
}

// Dropped records a rejected row.
func (s *LoadStats) Dropped() {
	s.Rows++
	s.DroppedRows++
}

// Kept records an accepted row.
func (s *LoadStats) Kept() {
	s.Rows++
	s.Observations++
}
