package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/lppminer/internal/logger"
)

// SearchStats describes the work done by an engine.
type SearchStats struct {
	Seeds        int
	NodesVisited int64
}

// Engine grows periodic patterns from a frequent-item set.
type Engine interface {
	Kind() EngineKind
	Thresholds() Thresholds
	Grow(ctx context.Context, basket *DayBasket, frequent *FrequentItemSet) (*PatternCollection, SearchStats, error)
}

// NewEngine validates th for kind and returns the matching engine.
func NewEngine(kind EngineKind, th Thresholds, log *logger.Logger) (Engine, error) {
	switch kind {
	case EngineFlat:
		return NewFlatEngine(th, log)
	case EngineDepth:
		return NewDepthEngine(th, log)
	default:
		return nil, &ConfigError{Field: "engine", Message: fmt.Sprintf("unknown engine %q", kind)}
	}
}

// Stats summarises a mining run.
type Stats struct {
	Observations  int
	Days          int
	FrequentItems int
	Patterns      int
	Seeds         int
	NodesVisited  int64
	Duration      time.Duration
}

// Result is the output of Mine.
type Result struct {
	Engine   EngineKind
	Basket   *DayBasket
	Frequent *FrequentItemSet
	Patterns *PatternCollection
	Stats    Stats
}

// Mine runs the whole pipeline: baskets, frequency filter, pattern growth.
// No observations, or no frequent items, yields an empty collection.
func Mine(ctx context.Context, observations []Observation, engine Engine) (*Result, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	start := time.Now()

	basket := BuildBaskets(observations)
	frequent := FilterFrequent(basket, engine.Thresholds().MinSupport)

	patterns, search, err := engine.Grow(ctx, basket, frequent)
	if err != nil {
		return nil, fmt.Errorf("%s engine failed: %w", engine.Kind(), err)
	}

	return &Result{
		Engine:   engine.Kind(),
		Basket:   basket,
		Frequent: frequent,
		Patterns: patterns,
		Stats: Stats{
			Observations:  len(observations),
			Days:          basket.Len(),
			FrequentItems: frequent.Len(),
			Patterns:      patterns.Len(),
			Seeds:         search.Seeds,
			NodesVisited:  search.NodesVisited,
			Duration:      time.Since(start),
		},
	}, nil
}
