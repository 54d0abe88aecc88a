package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dbsmedya/lppminer/internal/miner"
	"github.com/dbsmedya/lppminer/internal/mining"
	"github.com/dbsmedya/lppminer/internal/store"
)

// ItemSummary is a frequent item with its support and periodicity verdict.
type ItemSummary struct {
	Item           string `json:"item"`
	Support        int    `json:"support"`
	Periodic       bool   `json:"periodic"`
	QualifyingGaps int    `json:"qualifying_gaps"`
}

// SummarizeItems lists the frequent items in first-seen order with their
// verdicts at minPeriod.
func SummarizeItems(r *mining.Result, minPeriod int) []ItemSummary {
	if r == nil || r.Frequent == nil {
		return nil
	}
	items := r.Frequent.Items()
	out := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		support, _ := r.Frequent.Support(item)
		v := mining.CheckPeriodicity(item, r.Basket, minPeriod)
		out = append(out, ItemSummary{
			Item:           item,
			Support:        support,
			Periodic:       v.Periodic,
			QualifyingGaps: v.QualifyingGaps,
		})
	}
	return out
}

// FormatPattern joins a pattern's items with arrows.
func FormatPattern(p mining.Pattern) string {
	return strings.Join(p, " -> ")
}

// Result prints a full mining report: overview and thresholds side by side,
// then the frequent items and the accepted patterns.
func (p *Printer) Result(res *miner.MiningResult) {
	p.Header("Mining Result: %s", res.JobName)
	p.println()

	th := res.Thresholds
	overview := []string{
		"[ Run ]",
		strings.Repeat("-", 7),
		fmt.Sprintf("Engine:        %s", res.Engine),
		fmt.Sprintf("Run ID:        %s", valueOr(res.RunID, "(not stored)")),
		fmt.Sprintf("Duration:      %s", res.Duration.Round(time.Millisecond)),
	}
	if res.Load.Pages > 0 {
		overview = append(overview, fmt.Sprintf("Pages:         %d", res.Load.Pages))
	}
	overview = append(overview,
		fmt.Sprintf("Rows:          %d", res.Load.Rows),
		fmt.Sprintf("Dropped rows:  %d", res.Load.DroppedRows),
	)

	thresholds := []string{
		"[ Thresholds ]",
		strings.Repeat("-", 14),
		fmt.Sprintf("Min support:    %d", th.MinSupport),
		fmt.Sprintf("Min period:     %d", th.MinPeriod),
	}
	if res.Engine == mining.EngineDepth {
		thresholds = append(thresholds,
			fmt.Sprintf("Min gap count:  %d", th.MinGapCount),
			fmt.Sprintf("Max depth:      %d", th.MaxDepth),
			fmt.Sprintf("Workers:        %d", th.Workers),
		)
	}
	p.SideBySide(overview, thresholds, 4)

	if res.Result == nil {
		return
	}
	stats := res.Result.Stats

	p.println()
	p.Section("Statistics")
	pairs := [][2]string{
		{"Observations", strconv.Itoa(stats.Observations)},
		{"Days", strconv.Itoa(stats.Days)},
		{"Frequent items", strconv.Itoa(stats.FrequentItems)},
		{"Patterns", strconv.Itoa(stats.Patterns)},
	}
	if res.Engine == mining.EngineDepth {
		pairs = append(pairs, [2]string{"Nodes visited", strconv.FormatInt(stats.NodesVisited, 10)})
	}
	p.KeyValues(pairs)

	p.println()
	p.Section("Frequent Items")
	p.items(SummarizeItems(res.Result, th.MinPeriod))

	p.println()
	p.Section(fmt.Sprintf("Patterns (%d)", stats.Patterns))
	p.patterns(res.Result.Patterns.Patterns())
}

func (p *Printer) items(items []ItemSummary) {
	if len(items) == 0 {
		p.println("  (none)")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		verdict := "no"
		if it.Periodic {
			verdict = "yes"
		}
		rows = append(rows, []string{it.Item, strconv.Itoa(it.Support), verdict, strconv.Itoa(it.QualifyingGaps)})
	}
	p.Table([]string{"ITEM", "SUPPORT", "PERIODIC", "GAPS"}, rows, func(_, col int, cell string) string {
		if col != 2 {
			return cell
		}
		if cell == "yes" {
			return p.paint(goodStyle, cell)
		}
		return p.paint(badStyle, cell)
	})
}

func (p *Printer) patterns(patterns []mining.Pattern) {
	if len(patterns) == 0 {
		p.println("  (none)")
		return
	}
	rows := make([][]string, 0, len(patterns))
	for i, pat := range patterns {
		rows = append(rows, []string{fmt.Sprintf("[%d]", i+1), strconv.Itoa(len(pat)), FormatPattern(pat)})
	}
	p.Table([]string{"#", "LEN", "PATTERN"}, rows, nil)
}

// StoredRun prints a persisted run and its patterns.
func (p *Printer) StoredRun(run *store.Run, patterns []mining.Pattern) {
	p.Header("Run %s", run.RunID)
	p.println()

	status := string(run.Status)
	switch run.Status {
	case store.RunStatusCompleted:
		status = p.paint(goodStyle, status)
	case store.RunStatusFailed:
		status = p.paint(badStyle, status)
	}

	pairs := [][2]string{
		{"Job", run.JobName},
		{"Engine", string(run.Engine)},
		{"Status", status},
		{"Started", run.StartedAt.Format(time.RFC3339)},
		{"Thresholds", fmt.Sprintf("support=%d gaps=%d period=%d depth=%d", run.MinSupport, run.MinGapCount, run.MinPeriod, run.MaxDepth)},
		{"Observations", strconv.FormatInt(run.Observations, 10)},
		{"Days", strconv.Itoa(run.Days)},
		{"Duration", run.Duration.String()},
	}
	if run.ErrorMessage != "" {
		pairs = append(pairs, [2]string{"Error", run.ErrorMessage})
	}
	p.KeyValues(pairs)

	p.println()
	p.Section(fmt.Sprintf("Patterns (%d)", len(patterns)))
	p.patterns(patterns)
}

// Runs prints a run listing, newest first.
func (p *Printer) Runs(jobName string, runs []store.Run) {
	p.Section("Runs: " + jobName)
	if len(runs) == 0 {
		p.println("  (none)")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			string(r.Engine),
			string(r.Status),
			strconv.Itoa(r.Patterns),
			r.StartedAt.Format("2006-01-02 15:04:05"),
		})
	}
	p.Table([]string{"RUN ID", "ENGINE", "STATUS", "PATTERNS", "STARTED"}, rows, func(_, col int, cell string) string {
		if col != 2 {
			return cell
		}
		switch store.RunStatus(cell) {
		case store.RunStatusCompleted:
			return p.paint(goodStyle, cell)
		case store.RunStatusFailed:
			return p.paint(badStyle, cell)
		}
		return cell
	})
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
