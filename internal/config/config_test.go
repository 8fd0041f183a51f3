package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.NotEmpty(t, cfg.Crawl.UserAgent)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
	require.Equal(t, 2*time.Second, cfg.SettleTimeout())
	require.Equal(t, 3, cfg.Resolver.Workers)
	require.True(t, cfg.Resolver.CaptureEnabled)
	require.Equal(t, "data/videos.json", cfg.Output.Path)
	require.False(t, cfg.Download.Enabled)
	require.False(t, cfg.Metrics.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawl:
  limit: 25
  page_workers: 2
resolver:
  capture_enabled: false
output:
  path: /tmp/out.json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Crawl.Limit)
	require.Equal(t, 2, cfg.Crawl.PageWorkers)
	require.False(t, cfg.Resolver.CaptureEnabled)
	require.Equal(t, "/tmp/out.json", cfg.Output.Path)
	// defaults survive a partial file
	require.Equal(t, 60, cfg.Resolver.YtDlpTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty user agent",
			mutate:  func(c *Config) { c.Crawl.UserAgent = "" },
			wantErr: "user_agent",
		},
		{
			name:    "zero page workers",
			mutate:  func(c *Config) { c.Crawl.PageWorkers = 0 },
			wantErr: "page_workers",
		},
		{
			name:    "zero resolver workers",
			mutate:  func(c *Config) { c.Resolver.Workers = 0 },
			wantErr: "resolver.workers",
		},
		{
			name:    "empty output path",
			mutate:  func(c *Config) { c.Output.Path = "" },
			wantErr: "output.path",
		},
		{
			name:    "capture enabled without tabs",
			mutate:  func(c *Config) { c.Capture.MaxParallel = 0 },
			wantErr: "max_parallel",
		},
		{
			name:    "metrics enabled without addr",
			mutate:  func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" },
			wantErr: "metrics.addr",
		},
		{
			name: "capture disabled ignores tab count",
			mutate: func(c *Config) {
				c.Resolver.CaptureEnabled = false
				c.Capture.MaxParallel = 0
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
