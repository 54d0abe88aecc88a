package mining

import "fmt"

// EngineKind selects a pattern-growth strategy.
type EngineKind string

const (
	// EngineFlat emits single-item patterns judged periodic.
	EngineFlat EngineKind = "flat"
	// EngineDepth runs the depth-bounded extension search.
	EngineDepth EngineKind = "depth"
)

// ParseEngineKind converts a configuration string to an EngineKind.
func ParseEngineKind(s string) (EngineKind, error) {
	switch EngineKind(s) {
	case EngineFlat, EngineDepth:
		return EngineKind(s), nil
	case "":
		return EngineFlat, nil
	default:
		return "", &ConfigError{Field: "engine", Message: fmt.Sprintf("unknown engine %q (want 'flat' or 'depth')", s)}
	}
}

// Thresholds configures a mining run.
//
// A single external min_support value feeds two distinct checks: MinSupport
// is the distinct-day count an item needs to be frequent, MinGapCount is the
// number of qualifying gaps the depth engine requires before it accepts a
// pattern. They are kept as separate fields so each can be set and tested on
// its own.
type Thresholds struct {
	MinSupport  int
	MinGapCount int
	MinPeriod   int
	MaxDepth    int

	// MaxNodes caps the number of depth-search nodes; zero means no cap.
	MaxNodes int64
	// Workers is the number of seeds searched concurrently by the depth engine.
	Workers int
}

// NewThresholds returns Thresholds with MinGapCount tied to minSupport.
func NewThresholds(minSupport, minPeriod, maxDepth int) Thresholds {
	return Thresholds{
		MinSupport:  minSupport,
		MinGapCount: minSupport,
		MinPeriod:   minPeriod,
		MaxDepth:    maxDepth,
		Workers:     1,
	}
}

// Validate checks the thresholds needed by the given engine.
func (t Thresholds) Validate(kind EngineKind) error {
	if t.MinSupport <= 0 {
		return &ConfigError{Field: "min_support", Message: "must be positive"}
	}
	if t.MinPeriod <= 0 {
		return &ConfigError{Field: "min_period", Message: "must be positive"}
	}
	if kind == EngineDepth {
		if t.MaxDepth < 1 {
			return &ConfigError{Field: "max_depth", Message: "must be at least 1"}
		}
		if t.MinGapCount < 0 {
			return &ConfigError{Field: "min_gap_count", Message: "cannot be negative"}
		}
		if t.MaxNodes < 0 {
			return &ConfigError{Field: "max_nodes", Message: "cannot be negative"}
		}
	}
	if t.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "cannot be negative"}
	}
	return nil
}
