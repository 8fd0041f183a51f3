// Package extractor parses fetched HTML into the structured records the
// crawl frontier and entry assembler consume.
package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

// postLinkPattern matches post permalinks: an absolute URL whose path is a
// single hyphenated slug segment.
var postLinkPattern = regexp.MustCompile(`^https?://[\w.-]*?/[-\w]+/?$`)

// Extractor implements scrape.PageParser with goquery.
type Extractor struct{}

// New returns a ready Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Parse builds the full PageRecord for a post page.
func (e *Extractor) Parse(html []byte, pageURL string) (scrape.PageRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return scrape.PageRecord{}, fmt.Errorf("parse html for %s: %w", pageURL, err)
	}

	record := scrape.PageRecord{
		URL:         pageURL,
		Title:       strings.TrimSpace(doc.Find("h1").First().Text()),
		Poster:      findPoster(doc),
		Description: strings.TrimSpace(doc.Find(".entry-content").First().Text()),
	}

	doc.Find(`a[rel="category tag"]`).Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			record.CategoryTags = append(record.CategoryTags, tag)
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		full := scrape.AbsolutizeURL(pageURL, href)
		if strings.HasPrefix(full, "http") {
			record.OutboundLinks = append(record.OutboundLinks, full)
		}
	})

	return record, nil
}

// Categories enumerates category listing links on the start page.
func (e *Extractor) Categories(html []byte, baseURL string) []scrape.Category {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var categories []scrape.Category
	doc.Find(`a[href*="/category/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		full := scrape.AbsolutizeURL(baseURL, href)
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		categories = append(categories, scrape.Category{
			URL:  full,
			Name: strings.TrimSpace(s.Text()),
		})
	})
	return categories
}

// PostLinks enumerates post permalinks on a category page, fragment
// stripped and deduplicated.
func (e *Extractor) PostLinks(html []byte, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		full := scrape.AbsolutizeURL(baseURL, href)
		full = strings.SplitN(full, "#", 2)[0]
		if !postLinkPattern.MatchString(full) || strings.Contains(full, "/category/") {
			return
		}
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})
	return links
}

// findPoster walks the poster heuristics ladder: JSON-LD ImageObject first,
// then og:image, then the first content-area image that is not a site logo
// or tracker pixel.
func findPoster(doc *goquery.Document) string {
	if poster := posterFromJSONLD(doc); poster != "" {
		return poster
	}
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
		return og
	}
	var poster string
	doc.Find(".entry-content img, article img, img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if src == "" {
			src, _ = s.Attr("data-src")
		}
		if src != "" && !strings.Contains(src, "histats") {
			poster = src
			return false
		}
		return true
	})
	return poster
}

type jsonLDNode struct {
	Type  string       `json:"@type"`
	URL   string       `json:"url"`
	Graph []jsonLDNode `json:"@graph"`
}

func posterFromJSONLD(doc *goquery.Document) string {
	var poster string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var node jsonLDNode
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return true
		}
		nodes := node.Graph
		if len(nodes) == 0 {
			nodes = []jsonLDNode{node}
		}
		for _, n := range nodes {
			if n.Type == "ImageObject" && n.URL != "" {
				poster = n.URL
				return false
			}
		}
		return true
	})
	return poster
}
