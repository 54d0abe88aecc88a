package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/mining"
	"github.com/dbsmedya/lppminer/internal/types"
)

// Loader drains a RowFetcher page by page into observations. Rows with no
// item or an unreadable date are dropped and counted.
type Loader struct {
	loading config.LoadingConfig
	logger  *logger.Logger
	jobName string
	stats   types.LoadStats
}

// NewLoader creates a Loader that sleeps loading.SleepSeconds between pages.
// log is expected to carry the job field already.
func NewLoader(loading config.LoadingConfig, log *logger.Logger, jobName string) *Loader {
	return &Loader{
		loading: loading,
		logger:  log,
		jobName: jobName,
	}
}

// Run fetches pages until an empty one comes back, the context is cancelled,
// or a fetch fails.
func (l *Loader) Run(ctx context.Context, fetcher RowFetcher) ([]mining.Observation, error) {
	l.logger.Infof("Loading observations for job %q", l.jobName)
	start := time.Now()
	defer func() { l.stats.Duration = time.Since(start) }()

	var observations []mining.Observation
	for {
		select {
		case <-ctx.Done():
			l.logger.Warnf("Loading interrupted: %v (%d pages, %d rows)", ctx.Err(), l.stats.Pages, l.stats.Rows)
			return nil, ctx.Err()
		default:
		}

		page, err := fetcher.FetchNextBatch(ctx)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", l.stats.Pages+1, err)
		}
		if len(page) == 0 {
			break
		}
		l.stats.Pages++

		kept := 0
		for _, row := range page {
			obs, ok := toObservation(row)
			if !ok {
				l.stats.Dropped()
				continue
			}
			l.stats.Kept()
			observations = append(observations, obs)
			kept++
		}
		fetcher.UpdateCheckpoint(page[len(page)-1].ID)

		l.logger.WithPage(l.stats.Pages).Debugw("Page loaded",
			"rows", len(page),
			"kept", kept,
			"checkpoint", fetcher.GetCheckpoint(),
		)

		if l.loading.SleepSeconds > 0 {
			sleep := time.Duration(l.loading.SleepSeconds * float64(time.Second))
			select {
			case <-ctx.Done():
				l.logger.Warnf("Loading interrupted during sleep: %v", ctx.Err())
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
		}
	}

	l.logger.Infow("Observations loaded",
		"pages", l.stats.Pages,
		"rows", l.stats.Rows,
		"observations", l.stats.Observations,
		"dropped_rows", l.stats.DroppedRows,
		"duration", time.Since(start).String(),
	)
	return observations, nil
}

// Stats returns what the last Run read.
func (l *Loader) Stats() types.LoadStats {
	return l.stats
}

func toObservation(row Row) (mining.Observation, bool) {
	item, ok := types.ToItemID(row.Item)
	if !ok {
		return mining.Observation{}, false
	}
	t, err := types.ToTime(row.Date)
	if err != nil {
		return mining.Observation{}, false
	}
	return mining.Observation{Item: item, Day: mining.DayOf(t)}, true
}
