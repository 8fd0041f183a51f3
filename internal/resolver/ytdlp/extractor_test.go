package ytdlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fakeRun(out []byte, err error) (runCommand, *[][]string) {
	var calls [][]string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		return out, err
	}
	return run, &calls
}

func TestExtract_FormatsList(t *testing.T) {
	t.Parallel()

	out := []byte(`{
		"formats": [
			{"format_id": "hls-720", "ext": "mp4", "height": 720, "tbr": 2500, "url": "https://cdn.example/720.mp4"},
			{"format_id": "hls-480", "ext": "mp4", "height": 480, "tbr": 1200, "url": "https://cdn.example/480.mp4"}
		]
	}`)
	e := New(Config{})
	e.run, _ = fakeRun(out, nil)

	info, err := e.Extract(context.Background(), "https://host.example/v")
	require.NoError(t, err)
	require.Len(t, info.Formats, 2)
	require.Equal(t, "hls-720", info.Formats[0].FormatID)
	require.Equal(t, 720, info.Formats[0].Height)
	require.InDelta(t, 2500, info.Formats[0].Bitrate, 0.01)
}

func TestExtract_SingleDirectURL(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	e.run, _ = fakeRun([]byte(`{"url": "https://cdn.example/v.mp4", "ext": "mp4"}`), nil)

	info, err := e.Extract(context.Background(), "https://host.example/v")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/v.mp4", info.URL)
	require.Equal(t, "mp4", info.Ext)
}

func TestExtract_CommandLine(t *testing.T) {
	t.Parallel()

	e := New(Config{BinaryPath: "/opt/bin/yt-dlp"})
	run, calls := fakeRun([]byte(`{"url": "https://cdn.example/v.mp4"}`), nil)
	e.run = run

	_, err := e.Extract(context.Background(), "https://host.example/v")
	require.NoError(t, err)
	require.Equal(t, [][]string{{
		"/opt/bin/yt-dlp", "-J", "--no-warnings", "--skip-download", "https://host.example/v",
	}}, *calls)
}

func TestExtract_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     []byte
		runErr  error
		wantErr string
	}{
		{
			name:    "binary failure",
			runErr:  errors.New("exit status 1: ERROR: Unsupported URL"),
			wantErr: "Unsupported URL",
		},
		{
			name:    "garbage output",
			out:     []byte("not json at all"),
			wantErr: "decode yt-dlp output",
		},
		{
			name:    "valid json but no media",
			out:     []byte(`{"title": "a page with no video"}`),
			wantErr: "no media",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := New(Config{})
			e.run, _ = fakeRun(tc.out, tc.runErr)

			_, err := e.Extract(context.Background(), "https://host.example/v")
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	require.Equal(t, "yt-dlp", e.cfg.BinaryPath)
	require.Equal(t, 60*time.Second, e.cfg.Timeout)
}
