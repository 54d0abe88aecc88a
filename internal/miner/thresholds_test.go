package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/lppminer/internal/config"
)

func TestThresholds(t *testing.T) {
	zero, two := 0, 2

	tests := []struct {
		name     string
		in       config.MiningConfig
		gapCount int
		workers  int
		maxNodes int64
	}{
		{"gap count follows min_support", config.MiningConfig{MinSupport: 4, MinPeriod: 7, MaxDepth: 3}, 4, 1, 0},
		{"explicit gap count", config.MiningConfig{MinSupport: 4, MinGapCount: &two, MinPeriod: 7, MaxDepth: 3}, 2, 1, 0},
		{"explicit zero gap count", config.MiningConfig{MinSupport: 4, MinGapCount: &zero, MinPeriod: 7, MaxDepth: 3}, 0, 1, 0},
		{"workers and node cap", config.MiningConfig{MinSupport: 1, MinPeriod: 1, MaxDepth: 1, Workers: 8, MaxNodes: 500}, 1, 8, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Thresholds(tt.in)
			assert.Equal(t, tt.in.MinSupport, th.MinSupport)
			assert.Equal(t, tt.in.MinPeriod, th.MinPeriod)
			assert.Equal(t, tt.in.MaxDepth, th.MaxDepth)
			assert.Equal(t, tt.gapCount, th.MinGapCount)
			assert.Equal(t, tt.workers, th.Workers)
			assert.Equal(t, tt.maxNodes, th.MaxNodes)
		})
	}
}
