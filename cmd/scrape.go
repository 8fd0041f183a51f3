package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/api"
	"github.com/pharaohanjay-gif/dado-stream/internal/capture"
	"github.com/pharaohanjay-gif/dado-stream/internal/clock/system"
	"github.com/pharaohanjay-gif/dado-stream/internal/download"
	"github.com/pharaohanjay-gif/dado-stream/internal/extractor"
	collyfetcher "github.com/pharaohanjay-gif/dado-stream/internal/fetcher/colly"
	"github.com/pharaohanjay-gif/dado-stream/internal/metrics"
	"github.com/pharaohanjay-gif/dado-stream/internal/resolver/ytdlp"
	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
	"github.com/pharaohanjay-gif/dado-stream/internal/sink"
)

type scrapeFlags struct {
	startURL    string
	out         string
	limit       int
	limitPerCat int
	categories  []string
	doDownload  bool
	outputDir   string
}

// newScrapeCmd creates the 'scrape' subcommand, which runs one full
// harvest: discover categories, traverse posts, resolve sources, write the
// JSON output.
func newScrapeCmd() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs a harvest from the given start URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.startURL, "start-url", "", "start page to discover categories from (required)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output JSON path (default from config)")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "max post pages to process (0 = unlimited)")
	cmd.Flags().IntVar(&flags.limitPerCat, "limit-per-cat", 0, "max posts taken per category (default from config)")
	cmd.Flags().StringSliceVar(&flags.categories, "categories", nil, "restrict traversal to categories containing these slugs")
	cmd.Flags().BoolVar(&flags.doDownload, "download", false, "run the reproduction command for each resolved entry")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for downloaded media (default from config)")
	_ = cmd.MarkFlagRequired("start-url")

	return cmd
}

func runScrape(parent context.Context, flags scrapeFlags) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	runLogger := logger.With(zap.String("run_id", uuid.NewString()))

	if flags.out != "" {
		cfg.Output.Path = flags.out
	}
	if flags.limit > 0 {
		cfg.Crawl.Limit = flags.limit
	}
	if flags.limitPerCat > 0 {
		cfg.Crawl.LimitPerCategory = flags.limitPerCat
	}
	if flags.doDownload {
		cfg.Download.Enabled = true
	}
	if flags.outputDir != "" {
		cfg.Download.OutputDir = flags.outputDir
	}

	if cfg.Metrics.Enabled {
		srv := api.NewServer(cfg.Metrics.Addr, runLogger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				runLogger.Warn("metrics shutdown", zap.Error(err))
			}
		}()
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawl.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	parser := extractor.New()

	meta := ytdlp.New(ytdlp.Config{
		BinaryPath: cfg.Resolver.YtDlpPath,
		Timeout:    time.Duration(cfg.Resolver.YtDlpTimeout) * time.Second,
	})

	capturer, err := buildCapturer(runLogger)
	if err != nil {
		return err
	}
	if capturer != nil {
		defer capturer.Close()
	}

	resolver := newResolver(meta, capturer, runLogger)

	frontier := scrape.NewFrontier(fetcher, parser, scrape.FrontierConfig{
		LimitPerCategory: cfg.Crawl.LimitPerCategory,
		Allow:            flags.categories,
	}, runLogger)

	var downloader scrape.CommandRunner
	if cfg.Download.Enabled {
		downloader = download.NewRunner(
			cfg.Download.OutputDir,
			time.Duration(cfg.Download.TimeoutMinutes)*time.Minute,
			runLogger,
		)
	}

	engine := scrape.NewEngine(
		scrape.EngineConfig{
			StartURL:    flags.startURL,
			Limit:       cfg.Crawl.Limit,
			PageWorkers: cfg.Crawl.PageWorkers,
			Download:    cfg.Download.Enabled,
		},
		frontier,
		fetcher,
		parser,
		resolver,
		sink.NewJSONFile(cfg.Output.Path, runLogger),
		downloader,
		system.New(),
		runLogger,
	)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run harvest: %w", err)
	}
	return nil
}

// buildCapturer launches the browser tier, or degrades to metadata-only
// resolution when the browser cannot start.
func buildCapturer(runLogger *zap.Logger) (*capture.Capturer, error) {
	if !cfg.Resolver.CaptureEnabled {
		return nil, nil
	}
	capturer, err := capture.New(capture.Config{
		UserAgent:   cfg.Crawl.UserAgent,
		NavTimeout:  time.Duration(cfg.Capture.NavTimeoutSec) * time.Second,
		MaxParallel: cfg.Capture.MaxParallel,
		DomainQPS:   cfg.Capture.DomainQPS,
	}, runLogger)
	if err != nil {
		runLogger.Warn("browser capture unavailable; continuing with metadata tier only", zap.Error(err))
		return nil, nil
	}
	return capturer, nil
}

func newResolver(meta scrape.MetadataExtractor, capturer *capture.Capturer, runLogger *zap.Logger) *scrape.Resolver {
	var tier2 scrape.Capturer
	if capturer != nil {
		tier2 = capturer
	}
	return scrape.NewResolver(meta, tier2, scrape.ResolverConfig{
		Workers:       cfg.Resolver.Workers,
		CaptureSettle: cfg.SettleTimeout(),
	}, runLogger)
}
