package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ironsheep/surf-chart-ocr/internal/dataset"
	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find chart URLs for spots without a gif_url",
	Long: `Try the alternate chart URLs of every spot in the locations CSV that has
no gif_url yet, one HEAD request at a time. The first URL answering 200 is
written into the gif_url column straight away, so an interrupted run keeps
what it found. The extract command picks the URLs up with --known-urls.

Examples:
  # Fill in gif_url for the default locations file
  surf-extract discover

  # Work from the end of the list, e.g. alongside a forward run
  surf-extract discover --reverse --delay 1s`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().String("locations", "", "locations CSV to read and update (default: config locations)")
	discoverCmd.Flags().Duration("delay", 0, "pause between requests (default: config request_delay)")
	discoverCmd.Flags().Bool("reverse", false, "process spots from the end of the list")
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	path := cfg.Locations
	if cmd.Flags().Changed("locations") {
		path, _ = cmd.Flags().GetString("locations")
	}
	delay := cfg.RequestDelay
	if cmd.Flags().Changed("delay") {
		delay, _ = cmd.Flags().GetDuration("delay")
	}
	reverse, _ := cmd.Flags().GetBool("reverse")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spots, err := dataset.LoadSpots(path)
	if err != nil {
		return err
	}

	source := newSource(cfg)
	d := extract.NewDiscoverer(source, extract.DiscoverConfig{
		BaseURL: cfg.BaseURL,
		Delay:   delay,
		Reverse: reverse,
		Logger:  log,
	})
	sum, err := d.Run(ctx, spots, locationsSaver(path))

	fmt.Println()
	fmt.Println("=== Discovery Complete ===")
	fmt.Printf("Run: %s\n", sum.RunID)
	fmt.Printf("Spots without URL: %d\n", sum.Missing)
	fmt.Printf("Spots checked: %d\n", sum.Checked)
	fmt.Printf("URLs found: %d\n", sum.Found)
	fmt.Printf("Still missing: %d\n", sum.Remaining)
	fmt.Printf("Locations: %s\n", path)
	if state := source.BreakerState(); state != "disabled" {
		fmt.Printf("Chart source circuit: %s\n", state)
	}

	if errors.Is(err, context.Canceled) {
		log.Warnw("discovery interrupted, found urls already saved", "locations", path)
		return nil
	}
	return err
}

// locationsSaver writes each discovered URL into the locations CSV at path.
func locationsSaver(path string) func(surf.Spot, string) error {
	return func(spot surf.Spot, url string) error {
		n, err := dataset.SaveGIFURLs(path, map[string]string{spot.Name: url})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("spot %q not found in %s", spot.Name, path)
		}
		return nil
	}
}
