package scrape

import (
	"regexp"
	"strings"
)

// Pure URL classification. Everything in this file is a function of its
// inputs so the heuristics can be unit-tested without network access.

var (
	tsSegmentPattern = regexp.MustCompile(`\.ts(\?|$)`)
	mediaURLPattern  = regexp.MustCompile(`https?://[^"'\s<>]+\.(?:m3u8|mp4)(?:\?[^"'\s<>]*)?`)

	candidateKeywords = []string{"download", "watch", "stream", "server"}
	mediaLinkPattern  = regexp.MustCompile(`(?i)\.m3u8|\.mp4`)
)

// IsMediaRequestURL reports whether a network request URL looks like a
// direct media asset or stream segment: an .mp4 file, an .m3u8 manifest, or
// a .ts transport segment (optionally with a query string).
func IsMediaRequestURL(u string) bool {
	return strings.Contains(u, ".m3u8") ||
		strings.HasSuffix(u, ".mp4") ||
		tsSegmentPattern.MatchString(u)
}

// ExtForCapturedURL infers the container type from a captured URL suffix.
// Manifest wins over container wins over segment; first match applies.
func ExtForCapturedURL(u string) Ext {
	switch {
	case strings.Contains(u, ".m3u8"):
		return ExtM3U8
	case strings.HasSuffix(u, ".mp4"):
		return ExtMP4
	default:
		return ExtTS
	}
}

// MediaURLsInHTML scans rendered page text for literal .mp4/.m3u8 URLs that
// were never issued as requests (lazily constructed players).
func MediaURLsInHTML(html string) []string {
	return mediaURLPattern.FindAllString(html, -1)
}

// SelectCandidates filters a page's outbound links to those plausibly
// pointing at a video host. A link qualifies when it carries one of the
// hosting keywords or a direct media extension. When nothing qualifies, the
// fallback is every external link (anything off the start site), which can
// over-select but keeps script-hosted players reachable. YouTube links are
// skipped outright: they never expose a direct asset to this pipeline.
// The result is deduplicated preserving first-seen order.
func SelectCandidates(links []string, startBase string) []string {
	var picked []string
	for _, l := range links {
		if isYouTube(l) {
			continue
		}
		lower := strings.ToLower(l)
		if hasCandidateKeyword(lower) || mediaLinkPattern.MatchString(lower) {
			picked = append(picked, l)
		}
	}

	if len(picked) == 0 {
		for _, l := range links {
			if isYouTube(l) {
				continue
			}
			if strings.HasPrefix(l, "http") && !strings.HasPrefix(l, startBase) {
				picked = append(picked, l)
			}
		}
	}

	seen := make(map[string]struct{}, len(picked))
	out := picked[:0]
	for _, c := range picked {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func hasCandidateKeyword(lower string) bool {
	for _, kw := range candidateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isYouTube(u string) bool {
	return strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be")
}
