package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Extract one chart and print the record as JSON",
	Long: `Extract a single chart. The chart is read from --path, downloaded from
--url, or located from --spot and --month on the configured base URL.

Examples:
  surf-extract chart --spot "Praia do Norte" --month january
  surf-extract chart --path ./coxos.march.gif --spot Coxos --month march`,
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().String("url", "", "chart URL")
	chartCmd.Flags().String("path", "", "local chart file")
	chartCmd.Flags().String("spot", "", "spot name")
	chartCmd.Flags().String("month", "", "month the chart describes")
	_ = chartCmd.MarkFlagRequired("month")
}

func runChart(cmd *cobra.Command, _ []string) error {
	url, _ := cmd.Flags().GetString("url")
	path, _ := cmd.Flags().GetString("path")
	spot, _ := cmd.Flags().GetString("spot")
	monthFlag, _ := cmd.Flags().GetString("month")

	month, err := surf.ParseMonth(monthFlag)
	if err != nil {
		return err
	}
	if url == "" && path == "" && spot == "" {
		return errors.New("one of --url, --path or --spot is required")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	var data []byte
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		if url == "" {
			url = surf.ChartURL(cfg.BaseURL, spot, month)
		}
		log.Debugw("fetching chart", "url", url)
		data, err = p.source.Fetch(cmd.Context(), url)
	}
	if err != nil {
		return fmt.Errorf("no chart: %w", err)
	}

	res, err := p.extractor.Analyze(cmd.Context(), extract.ChartRequest{Spot: spot, Month: month, URL: url}, data)
	if err != nil {
		return err
	}
	for status, n := range res.Readings.Defaulted() {
		log.Infow("fields defaulted to 0.0", "status", status.String(), "count", n)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Record)
}
