// Package capture implements the browser-automation backend: it drives a
// headless Chrome session to a candidate URL and records the media URLs the
// page requests while it settles.
package capture

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pharaohanjay-gif/dado-stream/internal/metrics"
	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

// Config controls the capture sessions.
type Config struct {
	// UserAgent is the same fixed identity the page fetcher uses.
	UserAgent string
	// NavTimeout bounds one full capture session wall-clock.
	NavTimeout time.Duration
	// MaxParallel bounds concurrent browser tabs.
	MaxParallel int
	// DomainQPS throttles captures per target domain; 0 disables.
	DomainQPS float64
}

// Capturer implements scrape.Capturer with chromedp.
type Capturer struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	cfg             Config
	sem             chan struct{}
	domainLimiters  sync.Map
	logger          *zap.Logger
}

// New launches the shared browser process. Each Capture call gets its own
// tab; Close tears the browser down.
func New(cfg Config, logger *zap.Logger) (*Capturer, error) {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Capturer{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		cfg:             cfg,
		sem:             make(chan struct{}, cfg.MaxParallel),
		logger:          logger,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (c *Capturer) Close() {
	if c == nil {
		return
	}
	c.browserCancel()
	c.allocatorCancel()
}

// Capture navigates an isolated tab to rawURL, observes outbound requests
// for the settle period, and returns every distinct media URL seen either
// on the wire or as a literal in the rendered HTML. The tab is closed on
// every path.
func (c *Capturer) Capture(ctx context.Context, rawURL string, settle time.Duration) ([]string, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire capture slot: %w", ctx.Err())
	}
	defer func() { <-c.sem }()

	if err := c.waitDomainBudget(ctx, rawURL); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, c.cfg.NavTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	found := newURLSet()
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || req.Request == nil {
			return
		}
		if scrape.IsMediaRequestURL(req.Request.URL) {
			found.add(req.Request.URL)
		}
	})

	start := time.Now()
	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(c.cfg.UserAgent),
		chromedp.Navigate(rawURL),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	err := chromedp.Run(taskCtx, tasks)
	metrics.ObserveCapture(time.Since(start).Seconds())
	if err != nil {
		// Navigation may time out after media requests were already seen;
		// whatever was captured still counts.
		if found.len() == 0 {
			return nil, fmt.Errorf("capture %s: %w", rawURL, err)
		}
		c.logger.Debug("capture finished with navigation error",
			zap.String("url", rawURL),
			zap.Error(err),
		)
	}

	for _, u := range scrape.MediaURLsInHTML(html) {
		found.add(u)
	}
	return found.values(), nil
}

func (c *Capturer) waitDomainBudget(ctx context.Context, rawURL string) error {
	if c.cfg.DomainQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse capture url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := c.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(c.cfg.DomainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait capture limiter: %w", err)
	}
	return nil
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

type urlSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
	list []string
}

func newURLSet() *urlSet {
	return &urlSet{seen: make(map[string]struct{})}
}

func (s *urlSet) add(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[u]; ok {
		return
	}
	s.seen[u] = struct{}{}
	s.list = append(s.list, u)
}

func (s *urlSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func (s *urlSet) values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.list...)
}
