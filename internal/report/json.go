package report

import (
	"encoding/json"
	"io"

	"github.com/dbsmedya/lppminer/internal/miner"
	"github.com/dbsmedya/lppminer/internal/mining"
)

type jsonThresholds struct {
	MinSupport  int   `json:"min_support"`
	MinGapCount int   `json:"min_gap_count"`
	MinPeriod   int   `json:"min_period"`
	MaxDepth    int   `json:"max_depth"`
	MaxNodes    int64 `json:"max_nodes,omitempty"`
	Workers     int   `json:"workers"`
}

type jsonLoad struct {
	Rows        int64 `json:"rows"`
	DroppedRows int64 `json:"dropped_rows"`
	Pages       int   `json:"pages,omitempty"`
}

type jsonStats struct {
	Observations  int   `json:"observations"`
	Days          int   `json:"days"`
	FrequentItems int   `json:"frequent_items"`
	Patterns      int   `json:"patterns"`
	NodesVisited  int64 `json:"nodes_visited"`
	DurationMS    int64 `json:"duration_ms"`
}

// Document is the JSON form of a mining result.
type Document struct {
	Job           string            `json:"job"`
	RunID         string            `json:"run_id,omitempty"`
	Engine        mining.EngineKind `json:"engine"`
	Thresholds    jsonThresholds    `json:"thresholds"`
	Load          jsonLoad          `json:"load"`
	Stats         jsonStats         `json:"stats"`
	FrequentItems []ItemSummary     `json:"frequent_items"`
	Patterns      []mining.Pattern  `json:"patterns"`
}

// NewDocument converts res to its JSON form. Empty lists encode as [].
func NewDocument(res *miner.MiningResult) Document {
	th := res.Thresholds
	doc := Document{
		Job:    res.JobName,
		RunID:  res.RunID,
		Engine: res.Engine,
		Thresholds: jsonThresholds{
			MinSupport:  th.MinSupport,
			MinGapCount: th.MinGapCount,
			MinPeriod:   th.MinPeriod,
			MaxDepth:    th.MaxDepth,
			MaxNodes:    th.MaxNodes,
			Workers:     th.Workers,
		},
		Load: jsonLoad{
			Rows:        res.Load.Rows,
			DroppedRows: res.Load.DroppedRows,
			Pages:       res.Load.Pages,
		},
		FrequentItems: []ItemSummary{},
		Patterns:      []mining.Pattern{},
	}

	if res.Result != nil {
		s := res.Result.Stats
		doc.Stats = jsonStats{
			Observations:  s.Observations,
			Days:          s.Days,
			FrequentItems: s.FrequentItems,
			Patterns:      s.Patterns,
			NodesVisited:  s.NodesVisited,
			DurationMS:    res.Duration.Milliseconds(),
		}
		if items := SummarizeItems(res.Result, th.MinPeriod); len(items) > 0 {
			doc.FrequentItems = items
		}
		if patterns := res.Result.Patterns.Patterns(); len(patterns) > 0 {
			doc.Patterns = patterns
		}
	}
	return doc
}

// WriteJSON writes res as indented JSON.
func WriteJSON(w io.Writer, res *miner.MiningResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}
