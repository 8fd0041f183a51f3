// Package ytdlp implements the metadata-extraction backend by shelling out
// to the yt-dlp binary. It only requests metadata; no content is downloaded.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

// Config controls the yt-dlp invocation.
type Config struct {
	// BinaryPath defaults to "yt-dlp" resolved from PATH.
	BinaryPath string
	// Timeout bounds one extraction. yt-dlp can stall on slow hosts.
	Timeout time.Duration
}

// runCommand executes a program and returns its stdout. Injectable so tests
// never need the real binary.
type runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor implements scrape.MetadataExtractor.
type Extractor struct {
	cfg Config
	run runCommand
}

// New builds an Extractor using the real binary.
func New(cfg Config) *Extractor {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "yt-dlp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{cfg: cfg, run: execOutput}
}

// Extract asks yt-dlp for the info JSON of one candidate URL. Any failure
// (binary missing, unsupported site, parse error) is returned as an error;
// the resolver treats it as "tier produced nothing".
func (e *Extractor) Extract(ctx context.Context, url string) (scrape.MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.run(ctx, e.cfg.BinaryPath,
		"-J",
		"--no-warnings",
		"--skip-download",
		url,
	)
	if err != nil {
		return scrape.MediaInfo{}, fmt.Errorf("yt-dlp %s: %w", url, err)
	}

	var info scrape.MediaInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return scrape.MediaInfo{}, fmt.Errorf("decode yt-dlp output for %s: %w", url, err)
	}
	if info.Empty() {
		return scrape.MediaInfo{}, fmt.Errorf("yt-dlp found no media for %s", url)
	}
	return info, nil
}

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
