package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/jonboulle/clockwork"
)

// URLChecker reports whether a chart URL answers 200.
type URLChecker interface {
	Exists(ctx context.Context, url string) (bool, error)
}

// DiscoverConfig configures a Discoverer.
type DiscoverConfig struct {
	// BaseURL prefixes the alternate chart URLs tried for each spot.
	BaseURL string

	// Delay is the fixed pause between consecutive requests. Zero disables
	// pacing.
	Delay time.Duration

	// Reverse walks the spots from the end of the list.
	Reverse bool

	Clock  clockwork.Clock
	Logger *logger.Logger
}

// DiscoverSummary reports what a discovery run did.
type DiscoverSummary struct {
	RunID     string `json:"run_id"`
	Missing   int    `json:"missing"`
	Checked   int    `json:"checked"`
	Found     int    `json:"found"`
	Remaining int    `json:"remaining"`
}

// Discoverer finds a working chart URL for spots whose names do not map onto
// the default URL pattern. Requests go out one at a time.
type Discoverer struct {
	checker URLChecker
	cfg     DiscoverConfig
	clock   clockwork.Clock
	log     *logger.Logger
	paced   bool
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(c URLChecker, cfg DiscoverConfig) *Discoverer {
	d := &Discoverer{checker: c, cfg: cfg, clock: cfg.Clock, log: cfg.Logger}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.log == nil {
		d.log = logger.NewNop()
	}
	return d
}

// Run tries the alternate URLs of every spot without a GIFURL, in list order
// (or reversed), and hands each first 200 to save straight away so an
// interrupted run keeps what it found. Spots that already have a URL are not
// requested. A save failure stops the run.
func (d *Discoverer) Run(ctx context.Context, spots []surf.Spot, save func(spot surf.Spot, url string) error) (DiscoverSummary, error) {
	sum := DiscoverSummary{RunID: uuid.NewString()}
	log := d.log.WithRun(sum.RunID)

	missing := make([]surf.Spot, 0, len(spots))
	for _, s := range spots {
		if s.GIFURL == "" {
			missing = append(missing, s)
		}
	}
	if d.cfg.Reverse {
		for i, j := 0, len(missing)-1; i < j; i, j = i+1, j-1 {
			missing[i], missing[j] = missing[j], missing[i]
		}
	}
	sum.Missing = len(missing)
	sum.Remaining = sum.Missing
	log.Infow("discovery started", "missing", sum.Missing, "with_url", len(spots)-sum.Missing, "reverse", d.cfg.Reverse)

	for _, spot := range missing {
		url, err := d.Find(ctx, spot.Name)
		if err != nil {
			return sum, err
		}
		sum.Checked++
		if url == "" {
			log.Infow("no working chart url", "spot", spot.Name, "formatted", surf.FormatSpotName(spot.Name))
			continue
		}
		if err := save(spot, url); err != nil {
			return sum, fmt.Errorf("failed to save chart url for %s: %w", spot.Name, err)
		}
		sum.Found++
		sum.Remaining--
		log.Infow("chart url found", "spot", spot.Name, "url", url)
	}

	log.Infow("discovery finished", "found", sum.Found, "remaining", sum.Remaining)
	return sum, nil
}

// Find returns the first alternate URL for name that answers 200, or "" when
// none does. Transport failures count as a miss. Only a cancelled ctx is
// returned as an error.
func (d *Discoverer) Find(ctx context.Context, name string) (string, error) {
	for _, url := range surf.AlternateChartURLs(d.cfg.BaseURL, name) {
		if d.paced {
			if err := d.pause(ctx); err != nil {
				return "", err
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		d.paced = d.cfg.Delay > 0

		ok, err := d.checker.Exists(ctx, url)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err != nil {
			d.log.WithError(err).Warnw("chart url check failed", "spot", name, "url", url)
			continue
		}
		if ok {
			return url, nil
		}
	}
	return "", nil
}

func (d *Discoverer) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.clock.After(d.cfg.Delay):
		return nil
	}
}
