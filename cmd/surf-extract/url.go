package main

import (
	"fmt"

	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print consistency chart URLs for a spot",
	Long: `Print the chart URL for one month, or for all twelve when --month is
omitted. --alternates adds the URLs tried for spots whose names do not map
onto the default pattern.`,
	RunE: runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)

	urlCmd.Flags().String("spot", "", "spot name")
	urlCmd.Flags().String("month", "", "month (default: all)")
	urlCmd.Flags().String("gif-url", "", "known chart URL of the spot")
	urlCmd.Flags().Bool("alternates", false, "also print alternate URLs")
	_ = urlCmd.MarkFlagRequired("spot")
}

func runURL(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("spot")
	monthFlag, _ := cmd.Flags().GetString("month")
	gifURL, _ := cmd.Flags().GetString("gif-url")
	alternates, _ := cmd.Flags().GetBool("alternates")

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	months := surf.Months
	if monthFlag != "" {
		m, err := surf.ParseMonth(monthFlag)
		if err != nil {
			return err
		}
		months = []string{m}
	}

	out := cmd.OutOrStdout()
	spot := surf.Spot{Name: name, GIFURL: gifURL}
	for _, m := range months {
		fmt.Fprintf(out, "%-10s %s\n", surf.CanonicalMonth(m), surf.SpotChartURL(cfg.BaseURL, spot, m))
	}
	if alternates {
		for _, u := range surf.AlternateChartURLs(cfg.BaseURL, name) {
			fmt.Fprintf(out, "%-10s %s\n", "alternate", u)
		}
	}
	return nil
}
