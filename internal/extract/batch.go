package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/ironsheep/surf-chart-ocr/internal/observability"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/jonboulle/clockwork"
)

// DefaultRequestDelay is the pause between consecutive chart requests.
const DefaultRequestDelay = 500 * time.Millisecond

// DefaultSnapshotEvery is how many records accumulate between intermediate
// snapshots.
const DefaultSnapshotEvery = 10

// ChartExtractor produces at most one record per chart.
type ChartExtractor interface {
	Extract(ctx context.Context, req ChartRequest) (surf.SurfRecord, bool)
}

// RecordSink is the merge-stage boundary. It receives every extracted record
// with the spot it belongs to.
type RecordSink interface {
	Append(spot surf.Spot, rec surf.SurfRecord) error

	// Snapshot persists everything appended so far without finishing the run.
	Snapshot() error

	// Close persists the final result.
	Close() error
}

// Job is one planned chart extraction.
type Job struct {
	Spot  surf.Spot
	Month string
	URL   string
}

// RunnerConfig configures a batch Runner.
type RunnerConfig struct {
	// BaseURL prefixes consistency chart URLs built from spot names.
	BaseURL string

	// Delay is the fixed pause between chart requests. Zero disables pacing.
	Delay time.Duration

	// Start and Limit select spots[Start:Limit] after filtering. A Limit of
	// zero means no upper bound.
	Start int
	Limit int

	// UseKnownURLs builds URLs from each spot's GIFURL and includes spots
	// without season data, for spots whose names do not map onto the default
	// URL pattern.
	UseKnownURLs bool

	// Skip reports spot/month pairs that already have a record.
	Skip func(spot surf.Spot, month string) bool

	// SnapshotEvery defaults to DefaultSnapshotEvery.
	SnapshotEvery int

	Clock  clockwork.Clock
	Logger *logger.Logger

	// Metrics, when set, counts records handed to the sink.
	Metrics *observability.Metrics
}

// Summary reports what a run did.
type Summary struct {
	RunID     string `json:"run_id"`
	Spots     int    `json:"spots"`
	Attempted int    `json:"attempted"`
	Extracted int    `json:"extracted"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// Runner extracts every month of every selected spot, strictly one chart at a
// time, pausing a fixed delay between requests.
type Runner struct {
	extractor ChartExtractor
	cfg       RunnerConfig
	clock     clockwork.Clock
	log       *logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(x ChartExtractor, cfg RunnerConfig) *Runner {
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = DefaultSnapshotEvery
	}
	r := &Runner{extractor: x, cfg: cfg, clock: cfg.Clock, log: cfg.Logger}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.log == nil {
		r.log = logger.NewNop()
	}
	return r
}

// Select filters spots and applies the Start/Limit window.
func (r *Runner) Select(spots []surf.Spot) []surf.Spot {
	eligible := make([]surf.Spot, 0, len(spots))
	for _, s := range spots {
		if r.cfg.UseKnownURLs {
			if s.GIFURL != "" {
				eligible = append(eligible, s)
			}
			continue
		}
		if s.HasSeasonData() {
			eligible = append(eligible, s)
		}
	}

	end := len(eligible)
	if r.cfg.Limit > 0 && r.cfg.Limit < end {
		end = r.cfg.Limit
	}
	start := r.cfg.Start
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}
	return eligible[start:end]
}

// Plan lists the jobs for the selected spots, every month in calendar order.
func (r *Runner) Plan(spots []surf.Spot) []Job {
	selected := r.Select(spots)
	jobs := make([]Job, 0, len(selected)*len(surf.Months))
	for _, s := range selected {
		for _, month := range surf.Months {
			url := surf.ChartURL(r.cfg.BaseURL, s.Name, month)
			if r.cfg.UseKnownURLs {
				url = surf.SpotChartURL(r.cfg.BaseURL, s, month)
			}
			jobs = append(jobs, Job{Spot: s, Month: month, URL: url})
		}
	}
	return jobs
}

// Run extracts every planned chart and hands records to sink. Failed charts
// are counted and skipped. Run returns early only when ctx is cancelled or
// the final Close fails; the sink is closed in both cases.
func (r *Runner) Run(ctx context.Context, spots []surf.Spot, sink RecordSink) (Summary, error) {
	jobs := r.Plan(spots)
	sum := Summary{RunID: uuid.NewString(), Spots: len(r.Select(spots))}
	log := r.log.WithRun(sum.RunID)
	log.Infow("batch started", "spots", sum.Spots, "charts", len(jobs))

	var runErr error
	paced := false
	for _, job := range jobs {
		if r.cfg.Skip != nil && r.cfg.Skip(job.Spot, job.Month) {
			sum.Skipped++
			continue
		}
		if paced {
			if err := r.pause(ctx); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		paced = r.cfg.Delay > 0

		sum.Attempted++
		rec, ok := r.extractor.Extract(ctx, ChartRequest{Spot: job.Spot.Name, Month: job.Month, URL: job.URL})
		if !ok {
			sum.Failed++
			continue
		}
		if err := sink.Append(job.Spot, rec); err != nil {
			log.Warnw("record not stored", "spot", job.Spot.Name, "month", rec.Month, "error", err)
			sum.Failed++
			continue
		}
		sum.Extracted++
		if r.cfg.Metrics != nil {
			r.cfg.Metrics.RecordsWritten.Inc()
		}

		if sum.Extracted%r.cfg.SnapshotEvery == 0 {
			if err := sink.Snapshot(); err != nil {
				log.Warnw("intermediate snapshot failed", "records", sum.Extracted, "error", err)
			} else {
				log.Infow("saved intermediate results", "records", sum.Extracted)
			}
		}
	}

	if err := sink.Close(); err != nil {
		return sum, fmt.Errorf("failed to write results: %w", err)
	}
	log.Infow("batch finished",
		"attempted", sum.Attempted, "extracted", sum.Extracted,
		"failed", sum.Failed, "skipped", sum.Skipped)
	return sum, runErr
}

func (r *Runner) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.clock.After(r.cfg.Delay):
		return nil
	}
}
