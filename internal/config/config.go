// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Output   OutputConfig   `mapstructure:"output"`
	Download DownloadConfig `mapstructure:"download"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CrawlConfig governs frontier traversal and page fetching.
type CrawlConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	Limit            int    `mapstructure:"limit"`
	LimitPerCategory int    `mapstructure:"limit_per_category"`
	PageWorkers      int    `mapstructure:"page_workers"`
}

// ResolverConfig governs the tiered resolution engine.
type ResolverConfig struct {
	Workers        int    `mapstructure:"workers"`
	YtDlpPath      string `mapstructure:"ytdlp_path"`
	YtDlpTimeout   int    `mapstructure:"ytdlp_timeout_seconds"`
	SettleSeconds  int    `mapstructure:"settle_seconds"`
	CaptureEnabled bool   `mapstructure:"capture_enabled"`
}

// CaptureConfig governs the headless browser subsystem.
type CaptureConfig struct {
	MaxParallel   int     `mapstructure:"max_parallel"`
	NavTimeoutSec int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
}

// OutputConfig sets the persistence target.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// DownloadConfig controls the optional post-resolution download trigger.
type DownloadConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	OutputDir      string `mapstructure:"output_dir"`
	TimeoutMinutes int    `mapstructure:"timeout_minutes"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("crawl.timeout_seconds", 15)
	v.SetDefault("crawl.limit", 0)
	v.SetDefault("crawl.limit_per_category", 500)
	v.SetDefault("crawl.page_workers", 4)
	v.SetDefault("resolver.workers", 3)
	v.SetDefault("resolver.ytdlp_path", "yt-dlp")
	v.SetDefault("resolver.ytdlp_timeout_seconds", 60)
	v.SetDefault("resolver.settle_seconds", 2)
	v.SetDefault("resolver.capture_enabled", true)
	v.SetDefault("capture.max_parallel", 1)
	v.SetDefault("capture.nav_timeout_seconds", 30)
	v.SetDefault("capture.domain_qps", 0.5)
	v.SetDefault("output.path", "data/videos.json")
	v.SetDefault("download.enabled", false)
	v.SetDefault("download.output_dir", "downloads")
	v.SetDefault("download.timeout_minutes", 30)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9190")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.UserAgent == "" {
		return fmt.Errorf("crawl.user_agent must be set")
	}
	if c.Crawl.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.timeout_seconds must be > 0")
	}
	if c.Crawl.PageWorkers <= 0 {
		return fmt.Errorf("crawl.page_workers must be > 0")
	}
	if c.Resolver.Workers <= 0 {
		return fmt.Errorf("resolver.workers must be > 0")
	}
	if c.Resolver.SettleSeconds <= 0 {
		return fmt.Errorf("resolver.settle_seconds must be > 0")
	}
	if c.Resolver.CaptureEnabled && c.Capture.MaxParallel <= 0 {
		return fmt.Errorf("capture.max_parallel must be > 0 when capture is enabled")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// FetchTimeout converts the crawl timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}

// SettleTimeout converts the capture settle period into a duration.
func (c Config) SettleTimeout() time.Duration {
	return time.Duration(c.Resolver.SettleSeconds) * time.Second
}
