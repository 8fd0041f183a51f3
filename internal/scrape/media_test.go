package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMediaRequestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "mp4 file", url: "https://cdn.example/video.mp4", want: true},
		{name: "m3u8 manifest", url: "https://cdn.example/master.m3u8", want: true},
		{name: "m3u8 with query", url: "https://cdn.example/master.m3u8?token=abc", want: true},
		{name: "ts segment", url: "https://cdn.example/seg-001.ts", want: true},
		{name: "ts segment with query", url: "https://cdn.example/seg-001.ts?sig=xyz", want: true},
		{name: "mp4 with query is not direct", url: "https://cdn.example/video.mp4?x=1", want: false},
		{name: "tracker pixel", url: "https://stats.example/hit.gif", want: false},
		{name: "html page", url: "https://example.com/watch/", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMediaRequestURL(tt.url); got != tt.want {
				t.Fatalf("expected %v got %v for %s", tt.want, got, tt.url)
			}
		})
	}
}

func TestExtForCapturedURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, ExtM3U8, ExtForCapturedURL("https://cdn.example/a.m3u8?x=1"))
	require.Equal(t, ExtMP4, ExtForCapturedURL("https://cdn.example/a.mp4"))
	require.Equal(t, ExtTS, ExtForCapturedURL("https://cdn.example/seg-01.ts"))
	// Manifest marker wins even when the URL also mentions mp4.
	require.Equal(t, ExtM3U8, ExtForCapturedURL("https://cdn.example/mp4/index.m3u8"))
}

func TestMediaURLsInHTML(t *testing.T) {
	t.Parallel()

	html := `<script>var src = "https://cdn.example/play/master.m3u8?tok=1";</script>
<video src="https://cdn.example/direct.mp4"></video>
<a href="https://example.com/page/">not media</a>`

	got := MediaURLsInHTML(html)
	require.Equal(t, []string{
		"https://cdn.example/play/master.m3u8?tok=1",
		"https://cdn.example/direct.mp4",
	}, got)
}

func TestSelectCandidates_KeywordMatch(t *testing.T) {
	t.Parallel()

	links := []string{
		"https://host.example/download/abc",
		"https://host.example/about",
		"https://stream.example/watch?v=1",
		"https://cdn.example/file.mp4",
	}

	got := SelectCandidates(links, "https://site.example")
	require.Equal(t, []string{
		"https://host.example/download/abc",
		"https://stream.example/watch?v=1",
		"https://cdn.example/file.mp4",
	}, got)
}

func TestSelectCandidates_FallbackToExternal(t *testing.T) {
	t.Parallel()

	links := []string{
		"https://site.example/other-post/",
		"https://player.example/embed/42",
		"https://ads.example/banner",
	}

	got := SelectCandidates(links, "https://site.example")
	require.Equal(t, []string{
		"https://player.example/embed/42",
		"https://ads.example/banner",
	}, got)
}

func TestSelectCandidates_SkipsYouTube(t *testing.T) {
	t.Parallel()

	links := []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
		"https://player.example/embed/42",
	}

	got := SelectCandidates(links, "https://site.example")
	require.Equal(t, []string{"https://player.example/embed/42"}, got)
}

func TestSelectCandidates_DedupPreservesOrder(t *testing.T) {
	t.Parallel()

	links := []string{
		"https://host.example/download/a",
		"https://host.example/download/b",
		"https://host.example/download/a",
	}

	got := SelectCandidates(links, "https://site.example")
	require.Equal(t, []string{
		"https://host.example/download/a",
		"https://host.example/download/b",
	}, got)
}

func TestSelectCandidates_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, SelectCandidates(nil, "https://site.example"))
	require.Empty(t, SelectCandidates([]string{"https://site.example/internal/"}, "https://site.example"))
}
