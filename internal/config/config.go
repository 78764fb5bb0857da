// Package config provides configuration management for surf-extract.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SURF_BASE_URL.
const EnvPrefix = "SURF"

// Config holds all configuration settings for surf-extract.
// Configuration precedence: CLI flags > Environment variables > Config file > Defaults
type Config struct {
	// BaseURL is the chart host prefix, e.g. https://www.surf-forecast.com/charts
	BaseURL string

	// Locations is the spot list CSV (name, new_region, time_of_year, gif_url)
	Locations string

	// OutputDir receives the analysis CSV and its intermediate snapshots
	OutputDir string

	// Output is the analysis CSV file name within OutputDir
	Output string

	// DebugDir receives bar crops and layout overlays when DebugEnabled is set
	DebugDir     string
	DebugEnabled bool

	// RequestDelay is the fixed pause between chart requests
	RequestDelay time.Duration

	// RequestTimeout bounds one chart download (0 = wait indefinitely)
	RequestTimeout time.Duration

	// Start and Limit select spots[Start:Limit] from the eligible spots (0 = no limit)
	Start int
	Limit int

	// KnownURLs extracts spots through their gif_url column instead of their name
	KnownURLs bool

	// Resume keeps rows already in the output file and skips their spot/month pairs
	Resume bool

	// Exclude is an earlier merged results CSV; spots present in it are skipped
	Exclude string

	// TessdataPrefix and Language configure Tesseract
	TessdataPrefix string
	Language       string

	// BreakerFailures opens the chart source circuit after this many consecutive
	// transport failures (0 = disabled)
	BreakerFailures uint32

	// MetricsAddr serves Prometheus metrics during a run when set, e.g. ":9090"
	MetricsAddr string

	LogLevel  string
	LogFormat string
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://www.surf-forecast.com/charts")
	v.SetDefault("locations", "locations.csv")
	v.SetDefault("output_dir", ".")
	v.SetDefault("output", "surf_analysis.csv")
	v.SetDefault("debug_dir", "debug_images")
	v.SetDefault("debug_enabled", false)
	v.SetDefault("request_delay", 500*time.Millisecond)
	v.SetDefault("request_timeout", 0)
	v.SetDefault("start", 0)
	v.SetDefault("limit", 0)
	v.SetDefault("known_urls", false)
	v.SetDefault("resume", false)
	v.SetDefault("exclude", "")
	v.SetDefault("tessdata_prefix", "")
	v.SetDefault("language", "eng")
	v.SetDefault("breaker_failures", 0)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads configuration into a Config. v may already carry bound flags;
// configFile is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	Defaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		BaseURL:         v.GetString("base_url"),
		Locations:       v.GetString("locations"),
		OutputDir:       v.GetString("output_dir"),
		Output:          v.GetString("output"),
		DebugDir:        v.GetString("debug_dir"),
		DebugEnabled:    v.GetBool("debug_enabled"),
		RequestDelay:    v.GetDuration("request_delay"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		Start:           v.GetInt("start"),
		Limit:           v.GetInt("limit"),
		KnownURLs:       v.GetBool("known_urls"),
		Resume:          v.GetBool("resume"),
		Exclude:         v.GetString("exclude"),
		TessdataPrefix:  v.GetString("tessdata_prefix"),
		Language:        v.GetString("language"),
		BreakerFailures: v.GetUint32("breaker_failures"),
		MetricsAddr:     v.GetString("metrics_addr"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid and internally consistent
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url cannot be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay cannot be negative, got %s", c.RequestDelay)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout)
	}
	if c.Start < 0 {
		return fmt.Errorf("start cannot be negative, got %d", c.Start)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit cannot be negative, got %d", c.Limit)
	}
	if c.Limit > 0 && c.Limit <= c.Start {
		return fmt.Errorf("limit %d must be greater than start %d", c.Limit, c.Start)
	}
	if c.Output == "" {
		return errors.New("output cannot be empty")
	}
	if c.Language == "" {
		return errors.New("language cannot be empty")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// OutputPath is the analysis CSV path.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.Output)
}

// LoggerConfig converts the logging settings.
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{Level: c.LogLevel, Format: c.LogFormat}
}
