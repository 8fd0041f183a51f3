package scrape

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/metrics"
)

// EngineConfig bounds a harvesting run.
type EngineConfig struct {
	// StartURL is the page categories are discovered from. Required.
	StartURL string
	// Limit caps the total number of post pages processed; 0 means no cap.
	Limit int
	// PageWorkers bounds concurrent post-page processing.
	PageWorkers int
	// Download triggers the reproduction command for each resolved entry.
	Download bool
	// FlushTimeout bounds the final sink write after the crawl finishes or
	// is aborted.
	FlushTimeout time.Duration
}

// Engine drives one harvesting run: frontier traversal, candidate
// selection, tiered resolution, entry assembly, and the final flush.
type Engine struct {
	cfg        EngineConfig
	frontier   *Frontier
	fetcher    Fetcher
	parser     PageParser
	resolver   *Resolver
	sink       Sink
	downloader CommandRunner
	clock      Clock
	logger     *zap.Logger

	mu      sync.Mutex
	entries []VideoEntry
	limited int
}

// NewEngine wires the pipeline components together.
func NewEngine(
	cfg EngineConfig,
	frontier *Frontier,
	fetcher Fetcher,
	parser PageParser,
	resolver *Resolver,
	sink Sink,
	downloader CommandRunner,
	clock Clock,
	logger *zap.Logger,
) *Engine {
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 1
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 30 * time.Second
	}
	return &Engine{
		cfg:        cfg,
		frontier:   frontier,
		fetcher:    fetcher,
		parser:     parser,
		resolver:   resolver,
		sink:       sink,
		downloader: downloader,
		clock:      clock,
		logger:     logger,
	}
}

type postItem struct {
	category Category
	url      string
}

// Run executes the full pipeline. The only fatal error is failing to fetch
// the start URL; every other failure reduces coverage and is logged.
// Entries assembled before a cancellation are still flushed.
func (e *Engine) Run(ctx context.Context) error {
	categories, err := e.frontier.DiscoverCategories(ctx, e.cfg.StartURL)
	if err != nil {
		return err
	}

	var items []postItem
	for _, cat := range categories {
		if ctx.Err() != nil {
			break
		}
		for _, post := range e.frontier.PostsIn(ctx, cat) {
			items = append(items, postItem{category: cat, url: post})
		}
	}

	e.processPosts(ctx, items)

	return e.flush()
}

func (e *Engine) processPosts(ctx context.Context, items []postItem) {
	sem := make(chan struct{}, e.cfg.PageWorkers)
	var wg sync.WaitGroup
	for _, item := range items {
		if !e.frontier.MarkVisited(item.url) {
			metrics.PageProcessed("duplicate")
			continue
		}
		if e.limitReached() {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}
		wg.Add(1)
		go func(it postItem) {
			defer wg.Done()
			defer func() { <-sem }()
			e.processPost(ctx, it)
		}(item)
	}
	wg.Wait()
}

func (e *Engine) processPost(ctx context.Context, item postItem) {
	html, err := e.fetcher.Fetch(ctx, item.url)
	if err != nil {
		e.logger.Warn("skipping post", zap.String("url", item.url), zap.Error(err))
		metrics.PageProcessed("fetch_failed")
		return
	}
	page, err := e.parser.Parse(html, item.url)
	if err != nil {
		e.logger.Warn("unparseable post", zap.String("url", item.url), zap.Error(err))
		metrics.PageProcessed("parse_failed")
		return
	}

	candidates := SelectCandidates(page.OutboundLinks, BaseOf(e.cfg.StartURL))
	sources := e.resolver.ResolveAll(ctx, candidates)

	entry := AssembleEntry(page, item.category.Name, candidates, sources, e.clock.Now())
	e.appendEntry(entry)
	metrics.PageProcessed("ok")
	metrics.EntryWritten(entry.BestSource != nil)

	e.logger.Info("assembled entry",
		zap.String("url", item.url),
		zap.Int("candidates", len(candidates)),
		zap.Int("sources", len(sources)),
		zap.Bool("resolved", entry.BestSource != nil),
	)

	if e.cfg.Download && entry.BestSource != nil && e.downloader != nil {
		// Fire and forget: a download failure never affects the entry.
		if err := e.downloader.Run(ctx, *entry.Reproduce); err != nil {
			e.logger.Warn("download command failed",
				zap.String("url", entry.BestSource.URL),
				zap.Error(err),
			)
		}
	}
}

func (e *Engine) appendEntry(entry VideoEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
}

func (e *Engine) limitReached() bool {
	if e.cfg.Limit <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limited++
	return e.limited > e.cfg.Limit
}

// flush writes whatever was assembled, on its own deadline so an aborted
// run still produces valid output.
func (e *Engine) flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.FlushTimeout)
	defer cancel()

	e.mu.Lock()
	entries := make([]VideoEntry, len(e.entries))
	copy(entries, e.entries)
	e.mu.Unlock()

	if err := e.sink.Save(ctx, entries); err != nil {
		return err
	}
	e.logger.Info("run complete",
		zap.Int("entries", len(entries)),
		zap.Int("pages_visited", e.frontier.VisitedCount()),
	)
	return nil
}
