package scrape

import (
	"context"
	"time"
)

// Fetcher retrieves a page body over HTTP with a bounded timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PageParser turns raw HTML into structured page data. Parse produces the
// full record for a post page; Categories and PostLinks support the two
// traversal levels of the frontier.
type PageParser interface {
	Parse(html []byte, pageURL string) (PageRecord, error)
	Categories(html []byte, baseURL string) []Category
	PostLinks(html []byte, baseURL string) []string
}

// MetadataExtractor is the fast resolution backend. It must not download
// content. A candidate the backend does not understand yields an error; the
// resolver treats any error as "tier produced nothing".
type MetadataExtractor interface {
	Extract(ctx context.Context, url string) (MediaInfo, error)
}

// Capturer is the browser-automation backend. It navigates an isolated
// session to url, observes network traffic for the settle period, and
// returns every distinct media URL seen. The session must be closed
// regardless of outcome.
type Capturer interface {
	Capture(ctx context.Context, url string, settle time.Duration) ([]string, error)
}

// Sink persists the collected entries at the end of a run.
type Sink interface {
	Save(ctx context.Context, entries []VideoEntry) error
}

// CommandRunner executes a structured external invocation. Used for the
// optional post-resolution download, which is fire-and-forget.
type CommandRunner interface {
	Run(ctx context.Context, inv Invocation) error
}

// Clock returns the current time (injectable for tests).
type Clock interface {
	Now() time.Time
}
