package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/surf-chart-ocr/internal/dataset"
	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/observability"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract every month for every spot in a locations CSV",
	Long: `Download and read the consistency chart for each month of each spot.

This command:
1. Reads spots from the locations CSV
2. Keeps spots with season data (or with a gif_url in --known-urls mode)
3. Applies the --start/--limit window
4. Extracts the twelve monthly charts one at a time, pausing between requests
5. Writes an intermediate CSV every 10 records and the final CSV at the end

Charts that cannot be fetched or read are logged and skipped.

Examples:
  # First 100 spots
  surf-extract extract --limit 100

  # Continue an interrupted run
  surf-extract extract --resume

  # Spots missing from an earlier merge, through their known chart URLs
  surf-extract extract --known-urls --exclude merged.csv --output missing_spots.csv`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("locations", "", "locations CSV (name, new_region, time_of_year, gif_url)")
	extractCmd.Flags().String("output-dir", "", "directory for the analysis CSV")
	extractCmd.Flags().String("output", "", "analysis CSV file name")
	extractCmd.Flags().Int("start", 0, "index of the first selected spot")
	extractCmd.Flags().Int("limit", 0, "index one past the last selected spot (0 = all)")
	extractCmd.Flags().Duration("delay", 0, "pause between chart requests")
	extractCmd.Flags().Bool("known-urls", false, "use each spot's gif_url instead of its name")
	extractCmd.Flags().Bool("resume", false, "keep rows in the existing output and skip them")
	extractCmd.Flags().String("exclude", "", "CSV of earlier results whose spots are skipped")
	extractCmd.Flags().Uint32("breaker-failures", 0, "open the circuit after this many consecutive fetch failures (0 = off)")
	extractCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address during the run")

	_ = viper.BindPFlag("locations", extractCmd.Flags().Lookup("locations"))
	_ = viper.BindPFlag("output_dir", extractCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("output", extractCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("start", extractCmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("limit", extractCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("request_delay", extractCmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("known_urls", extractCmd.Flags().Lookup("known-urls"))
	_ = viper.BindPFlag("resume", extractCmd.Flags().Lookup("resume"))
	_ = viper.BindPFlag("exclude", extractCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("breaker_failures", extractCmd.Flags().Lookup("breaker-failures"))
	_ = viper.BindPFlag("metrics_addr", extractCmd.Flags().Lookup("metrics-addr"))
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spots, err := dataset.LoadSpots(cfg.Locations)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, p.registry, log)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warnw("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := cfg.OutputPath()

	var seed []dataset.Row
	var done, excluded *dataset.Index
	if cfg.Resume {
		seed, err = dataset.LoadRows(outPath)
		if err != nil {
			return err
		}
		done = dataset.NewIndex(seed)
		log.Infow("resuming", "output", outPath, "existing_rows", len(seed))
	}
	if cfg.Exclude != "" {
		rows, err := dataset.LoadRows(cfg.Exclude)
		if err != nil {
			return err
		}
		excluded = dataset.NewIndex(rows)
		log.Infow("excluding merged spots", "file", cfg.Exclude, "rows", len(rows))
	}

	runner := extract.NewRunner(p.extractor, extract.RunnerConfig{
		BaseURL:      cfg.BaseURL,
		Delay:        cfg.RequestDelay,
		Start:        cfg.Start,
		Limit:        cfg.Limit,
		UseKnownURLs: cfg.KnownURLs,
		Skip:         skipFunc(done, excluded),
		Logger:       log,
		Metrics:      p.metrics,
	})

	sink := dataset.NewCSVSink(outPath, seed...)
	sum, err := runner.Run(ctx, spots, sink)

	fmt.Println()
	fmt.Println("=== Extraction Complete ===")
	fmt.Printf("Run: %s\n", sum.RunID)
	fmt.Printf("Spots: %d\n", sum.Spots)
	fmt.Printf("Charts attempted: %d\n", sum.Attempted)
	fmt.Printf("Records extracted: %d\n", sum.Extracted)
	fmt.Printf("Failed: %d\n", sum.Failed)
	fmt.Printf("Skipped: %d\n", sum.Skipped)
	fmt.Printf("Output: %s (%d rows)\n", outPath, len(sink.Rows()))
	if state := p.source.BreakerState(); state != "disabled" {
		fmt.Printf("Chart source circuit: %s\n", state)
	}

	if errors.Is(err, context.Canceled) {
		log.Warnw("run interrupted, partial results written", "output", outPath)
		return nil
	}
	return err
}

// skipFunc skips pairs already present in done and every month of spots in
// excluded. Either index may be nil.
func skipFunc(done, excluded *dataset.Index) func(surf.Spot, string) bool {
	if done == nil && excluded == nil {
		return nil
	}
	return func(spot surf.Spot, month string) bool {
		if excluded != nil && excluded.HasSpot(spot) {
			return true
		}
		return done != nil && done.Has(spot, month)
	}
}
