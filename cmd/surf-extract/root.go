package main

import (
	"fmt"
	"net/http"

	"github.com/ironsheep/surf-chart-ocr/internal/config"
	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/ironsheep/surf-chart-ocr/internal/observability"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "surf-extract",
	Short: "Extract surf condition statistics from consistency charts",
	Long: `surf-extract downloads monthly surf consistency charts and reads the
condition and wave-height percentages off them with Tesseract OCR.

Commands:
  - extract:  run the batch over a locations CSV and write the analysis CSV
  - chart:    extract one chart and print the record as JSON
  - url:      print chart URLs for a spot
  - discover: find chart URLs for spots whose names do not map onto the
              default pattern and save them into the locations CSV
  - serve:    run the MCP stdio server for single-chart inspection`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("base-url", "", "chart host prefix")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")
	rootCmd.PersistentFlags().String("tessdata", "", "tessdata directory")
	rootCmd.PersistentFlags().String("language", "", "tesseract language")
	rootCmd.PersistentFlags().Bool("debug-images", false, "save bar crops and layout overlays")
	rootCmd.PersistentFlags().String("debug-dir", "", "directory for debug images")

	// Bind flags to viper
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("tessdata_prefix", rootCmd.PersistentFlags().Lookup("tessdata"))
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("debug_enabled", rootCmd.PersistentFlags().Lookup("debug-images"))
	_ = viper.BindPFlag("debug_dir", rootCmd.PersistentFlags().Lookup("debug-dir"))
}

// setup loads configuration and builds the logger every command shares.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger.Get(), nil
}

// newSource builds the chart source shared by extraction and URL discovery.
func newSource(cfg *config.Config) *extract.HTTPSource {
	return extract.NewHTTPSource(extract.SourceConfig{
		Client:          &http.Client{Timeout: cfg.RequestTimeout},
		BreakerFailures: cfg.BreakerFailures,
	})
}

// pipeline is the chart source, recognizer and extractor built from config.
type pipeline struct {
	source    *extract.HTTPSource
	engine    *ocr.Engine
	extractor *extract.Extractor
	registry  *prometheus.Registry
	metrics   *observability.Metrics
}

func newPipeline(cfg *config.Config, log *logger.Logger) (*pipeline, error) {
	p := &pipeline{registry: prometheus.NewRegistry()}
	p.metrics = observability.NewMetrics(p.registry)

	p.source = newSource(cfg)
	p.engine = ocr.NewEngine(ocr.EngineConfig{
		Language:       cfg.Language,
		TessdataPrefix: cfg.TessdataPrefix,
	})
	if info := p.engine.Info(); !info.Available {
		log.Warnw("tesseract not available, every chart will fail", "language", info.Language)
	} else {
		log.Debugw("ocr engine ready", "backend", info.Backend, "version", info.Version, "language", info.Language)
	}

	var sink extract.ArtifactSink
	if cfg.DebugEnabled {
		sink = extract.NewFileSink(cfg.DebugDir)
		log.Infow("saving debug images", "dir", cfg.DebugDir)
	}

	x, err := extract.NewExtractor(extract.Config{
		Source:     p.source,
		Recognizer: p.engine,
		Sink:       sink,
		Logger:     log,
		Metrics:    p.metrics,
	})
	if err != nil {
		return nil, err
	}
	p.extractor = x
	return p, nil
}
