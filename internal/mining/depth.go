package mining

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/lppminer/internal/logger"
)

// DepthEngine grows multi-item patterns with a depth-first search.
//
// Every frequent item seeds its own search. At each node only the most
// recently appended item is checked for periodicity; the node's pattern is
// accepted when that item is periodic and has at least MinGapCount
// qualifying gaps. Extensions are drawn from the frequent items not already
// in the pattern, and the search stops descending past MaxDepth.
type DepthEngine struct {
	thresholds Thresholds
	logger     *logger.Logger
}

// NewDepthEngine returns a DepthEngine, rejecting MaxDepth < 1.
func NewDepthEngine(th Thresholds, log *logger.Logger) (*DepthEngine, error) {
	if err := th.Validate(EngineDepth); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &DepthEngine{thresholds: th, logger: log}, nil
}

func (e *DepthEngine) Kind() EngineKind { return EngineDepth }

func (e *DepthEngine) Thresholds() Thresholds { return e.thresholds }

// Grow implements Engine. Seeds may run concurrently when Workers > 1; their
// results are merged in seed order, so the output does not depend on
// scheduling.
func (e *DepthEngine) Grow(ctx context.Context, basket *DayBasket, frequent *FrequentItemSet) (*PatternCollection, SearchStats, error) {
	candidates := frequent.Items()

	// The verdict depends only on the item, never on the pattern around it.
	verdicts := make(map[string]Verdict, len(candidates))
	for _, item := range candidates {
		verdicts[item] = CheckPeriodicity(item, basket, e.thresholds.MinPeriod)
	}

	var nodes atomic.Int64
	perSeed := make([][]Pattern, len(candidates))

	run := func(ctx context.Context, i int) error {
		s := e.newSearch(ctx, candidates, verdicts, &nodes)
		if err := s.run(candidates[i]); err != nil {
			return err
		}
		perSeed[i] = s.accepted
		e.logger.WithSeed(candidates[i]).Debugw("Seed explored", "accepted", len(s.accepted))
		return nil
	}

	var err error
	if e.thresholds.Workers <= 1 {
		for i := range candidates {
			if err = run(ctx, i); err != nil {
				break
			}
		}
	} else {
		err = e.runParallel(ctx, len(candidates), run)
	}

	stats := SearchStats{Seeds: len(candidates), NodesVisited: nodes.Load()}
	if err != nil {
		return nil, stats, err
	}

	out := NewPatternCollection()
	for _, accepted := range perSeed {
		out.patterns = append(out.patterns, accepted...)
	}

	e.logger.Debugw("Depth-bounded growth complete",
		"seeds", stats.Seeds,
		"nodes_visited", stats.NodesVisited,
		"patterns", out.Len(),
		"max_depth", e.thresholds.MaxDepth,
	)
	return out, stats, nil
}

// runParallel searches seeds on at most Workers goroutines. The first error
// cancels the seeds still running.
func (e *DepthEngine) runParallel(ctx context.Context, seeds int, run func(context.Context, int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.thresholds.Workers)

	for i := 0; i < seeds && gctx.Err() == nil; i++ {
		i := i
		g.Go(func() error { return run(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// search is the state of one seed's DFS. The working pattern lives in buf
// and is reused through append and truncate; only accepted patterns are
// copied out.
type search struct {
	ctx        context.Context
	thresholds Thresholds
	candidates []string
	verdicts   map[string]Verdict
	nodes      *atomic.Int64

	buf       Pattern
	inPattern map[string]bool
	accepted  []Pattern
}

func (e *DepthEngine) newSearch(ctx context.Context, candidates []string, verdicts map[string]Verdict, nodes *atomic.Int64) *search {
	return &search{
		ctx:        ctx,
		thresholds: e.thresholds,
		candidates: candidates,
		verdicts:   verdicts,
		nodes:      nodes,
		buf:        make(Pattern, 0, e.thresholds.MaxDepth),
		inPattern:  make(map[string]bool, e.thresholds.MaxDepth),
	}
}

func (s *search) run(seed string) error {
	s.push(seed)
	defer s.pop()
	return s.explore(1)
}

func (s *search) explore(depth int) error {
	if depth > s.thresholds.MaxDepth {
		return nil
	}
	if err := s.visit(); err != nil {
		return err
	}

	last := s.buf[len(s.buf)-1]
	v := s.verdicts[last]
	if v.Periodic && v.QualifyingGaps >= s.thresholds.MinGapCount {
		s.accepted = append(s.accepted, s.buf.Clone())
	}

	// Children of a node at MaxDepth would be pruned on entry.
	if depth == s.thresholds.MaxDepth {
		return nil
	}

	for _, next := range s.candidates {
		if s.inPattern[next] {
			continue
		}
		s.push(next)
		err := s.explore(depth + 1)
		s.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *search) visit() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	n := s.nodes.Add(1)
	if s.thresholds.MaxNodes > 0 && n > s.thresholds.MaxNodes {
		return ErrSearchBudgetExceeded
	}
	return nil
}

func (s *search) push(item string) {
	s.buf = append(s.buf, item)
	s.inPattern[item] = true
}

func (s *search) pop() {
	last := s.buf[len(s.buf)-1]
	s.buf = s.buf[:len(s.buf)-1]
	delete(s.inPattern, last)
}
