package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[^0-9A-Za-z._ -]+`)

// NormalizeURL standardizes a URL for dedup keys. It lowercases the scheme
// and host, strips the fragment, removes default ports, and sorts query
// parameters.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = u.Query().Encode()

	return u.String(), nil
}

// Slug derives a stable identifier from a page URL path, e.g.
// "https://site/foo/bar/" -> "foo-bar".
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return invalidFilenameChars.ReplaceAllString(rawURL, "-")
	}
	return strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "-")
}

// SanitizeFilename strips characters that are unsafe in file names and caps
// the length, matching what the download runner expects.
func SanitizeFilename(s string) string {
	s = invalidFilenameChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, " _-")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// BaseOf returns the scheme://host prefix of a URL, used to distinguish
// internal from external links.
func BaseOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

// AbsolutizeURL resolves href against base when href is relative.
func AbsolutizeURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
