// Package miner runs configured mining jobs end to end: it loads the job's
// observations, mines them with the selected engine and persists the result.
package miner

import (
	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/mining"
)

// Thresholds converts a job's effective mining config into engine thresholds.
// An unset min_gap_count follows min_support; an explicit 0 accepts any
// periodic item.
func Thresholds(m config.MiningConfig) mining.Thresholds {
	th := mining.NewThresholds(m.MinSupport, m.MinPeriod, m.MaxDepth)
	if m.MinGapCount != nil {
		th.MinGapCount = *m.MinGapCount
	}
	th.MaxNodes = m.MaxNodes
	if m.Workers > 0 {
		th.Workers = m.Workers
	}
	return th
}
