package mining

import (
	"context"

	"github.com/dbsmedya/lppminer/internal/logger"
)

// FlatEngine checks every frequent item on its own and emits the periodic
// ones as single-item patterns. Only the boolean verdict is consulted; the
// qualifying gap count plays no part in acceptance.
type FlatEngine struct {
	thresholds Thresholds
	logger     *logger.Logger
}

// NewFlatEngine returns a FlatEngine. MaxDepth is ignored.
func NewFlatEngine(th Thresholds, log *logger.Logger) (*FlatEngine, error) {
	if err := th.Validate(EngineFlat); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &FlatEngine{thresholds: th, logger: log}, nil
}

func (e *FlatEngine) Kind() EngineKind { return EngineFlat }

func (e *FlatEngine) Thresholds() Thresholds { return e.thresholds }

// Grow implements Engine.
func (e *FlatEngine) Grow(ctx context.Context, basket *DayBasket, frequent *FrequentItemSet) (*PatternCollection, SearchStats, error) {
	out := NewPatternCollection()
	stats := SearchStats{}

	for _, item := range frequent.Items() {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Seeds++
		stats.NodesVisited++

		v := CheckPeriodicity(item, basket, e.thresholds.MinPeriod)
		if v.Periodic {
			out.Add(Pattern{item})
		} else {
			e.logger.Debugw("Item rejected as non-periodic", "item", item)
		}
	}

	e.logger.Debugw("Flat growth complete",
		"frequent_items", frequent.Len(),
		"patterns", out.Len(),
	)
	return out, stats, nil
}
