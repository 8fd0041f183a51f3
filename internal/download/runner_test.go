package download

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

func TestRebaseOutputArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		inv  scrape.Invocation
		dir  string
		want []string
	}{
		{
			name: "ffmpeg last argument is the target",
			inv: scrape.Invocation{
				Program: "ffmpeg",
				Args:    []string{"-y", "-i", "https://cdn.example/master.m3u8", "-c", "copy", "Sample.mp4"},
			},
			dir:  "/tmp/downloads",
			want: []string{"-y", "-i", "https://cdn.example/master.m3u8", "-c", "copy", "/tmp/downloads/Sample.mp4"},
		},
		{
			name: "yt-dlp rebases the -o value",
			inv: scrape.Invocation{
				Program: "yt-dlp",
				Args:    []string{"-o", "Sample.%(ext)s", "https://host.example/v"},
			},
			dir:  "/tmp/downloads",
			want: []string{"-o", "/tmp/downloads/Sample.%(ext)s", "https://host.example/v"},
		},
		{
			name: "empty dir leaves args alone",
			inv: scrape.Invocation{
				Program: "ffmpeg",
				Args:    []string{"-i", "in.m3u8", "out.mp4"},
			},
			dir:  "",
			want: []string{"-i", "in.m3u8", "out.mp4"},
		},
		{
			name: "unknown program untouched",
			inv: scrape.Invocation{
				Program: "curl",
				Args:    []string{"-O", "https://cdn.example/v.mp4"},
			},
			dir:  "/tmp/downloads",
			want: []string{"-O", "https://cdn.example/v.mp4"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := rebaseOutputArgs(tc.inv, tc.dir)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRebaseOutputArgs_DoesNotMutateInvocation(t *testing.T) {
	t.Parallel()

	inv := scrape.Invocation{
		Program: "ffmpeg",
		Args:    []string{"-i", "in.m3u8", "out.mp4"},
	}
	_ = rebaseOutputArgs(inv, "/elsewhere")
	require.Equal(t, []string{"-i", "in.m3u8", "out.mp4"}, inv.Args)
}

func TestRun_EmptyInvocation(t *testing.T) {
	t.Parallel()

	r := NewRunner(t.TempDir(), time.Second, zap.NewNop())
	require.Error(t, r.Run(context.Background(), scrape.Invocation{}))
}

func TestRun_MissingBinary(t *testing.T) {
	t.Parallel()

	r := NewRunner(t.TempDir(), time.Second, zap.NewNop())
	err := r.Run(context.Background(), scrape.Invocation{
		Program: "definitely-not-on-path-9f2c",
		Args:    []string{"whatever"},
	})
	require.Error(t, err)
}

func TestRun_ExecutesCommand(t *testing.T) {
	t.Parallel()

	r := NewRunner("", time.Second, zap.NewNop())
	require.NoError(t, r.Run(context.Background(), scrape.Invocation{
		Program: "true",
	}))
}
