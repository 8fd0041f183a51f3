package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Category is a discovered category listing page.
type Category struct {
	URL  string
	Name string
}

// FrontierConfig bounds the two-level traversal.
type FrontierConfig struct {
	// LimitPerCategory caps post links taken from one category page.
	LimitPerCategory int
	// Allow restricts traversal to categories whose URL contains one of
	// these slugs. Empty means traverse everything discovered.
	Allow []string
}

// Frontier performs the two-level traversal: categories from the start
// page, then post links from each category. It owns the visited set, so
// concurrent runs and tests never interfere through shared state.
type Frontier struct {
	fetcher Fetcher
	parser  PageParser
	cfg     FrontierConfig
	logger  *zap.Logger

	mu      sync.Mutex
	visited map[string]struct{}
}

// NewFrontier builds a Frontier with an empty visited set.
func NewFrontier(fetcher Fetcher, parser PageParser, cfg FrontierConfig, logger *zap.Logger) *Frontier {
	return &Frontier{
		fetcher: fetcher,
		parser:  parser,
		cfg:     cfg,
		logger:  logger,
		visited: make(map[string]struct{}),
	}
}

// DiscoverCategories fetches the start page and enumerates category links.
// A fetch failure here is the one fatal error of a run. The allow-list is
// applied after discovery, never during it.
func (f *Frontier) DiscoverCategories(ctx context.Context, startURL string) ([]Category, error) {
	html, err := f.fetcher.Fetch(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("fetch start url %s: %w", startURL, err)
	}
	categories := f.parser.Categories(html, BaseOf(startURL))
	f.logger.Info("discovered categories", zap.Int("count", len(categories)))
	return f.filterCategories(categories), nil
}

// PostsIn enumerates the post links of one category page. Failures are
// page-level recoverable: the category is skipped with a warning.
func (f *Frontier) PostsIn(ctx context.Context, cat Category) []string {
	html, err := f.fetcher.Fetch(ctx, cat.URL)
	if err != nil {
		f.logger.Warn("skipping category",
			zap.String("category", cat.Name),
			zap.String("url", cat.URL),
			zap.Error(err),
		)
		return nil
	}
	links := f.parser.PostLinks(html, BaseOf(cat.URL))
	if f.cfg.LimitPerCategory > 0 && len(links) > f.cfg.LimitPerCategory {
		links = links[:f.cfg.LimitPerCategory]
	}
	f.logger.Info("found posts in category",
		zap.String("category", cat.Name),
		zap.Int("count", len(links)),
	)
	return links
}

// MarkVisited records a page URL (fragment-stripped, normalized) and
// reports whether this call was the first visit. Each post page is
// processed at most once per run, even when linked from multiple
// categories.
func (f *Frontier) MarkVisited(pageURL string) bool {
	key, err := NormalizeURL(pageURL)
	if err != nil {
		key = pageURL
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[key]; ok {
		return false
	}
	f.visited[key] = struct{}{}
	return true
}

// VisitedCount reports how many distinct pages were marked this run.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

func (f *Frontier) filterCategories(categories []Category) []Category {
	if len(f.cfg.Allow) == 0 {
		return categories
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		for _, slug := range f.cfg.Allow {
			if slug != "" && strings.Contains(c.URL, slug) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
