package scrape

import (
	"strings"
	"time"
)

// unresolvedNote annotates entries for which both tiers completed without
// finding a direct source.
const unresolvedNote = "no direct source found; content is likely script-driven or protected"

// AssembleEntry merges page metadata with resolved sources into the final
// output record. categoryName is used when the page itself carried no
// category tags.
func AssembleEntry(
	page PageRecord,
	categoryName string,
	candidates []string,
	sources []SourceDescriptor,
	extractedAt time.Time,
) VideoEntry {
	slug := Slug(page.URL)
	categories := page.CategoryTags
	if len(categories) == 0 && categoryName != "" {
		categories = []string{categoryName}
	}

	entry := VideoEntry{
		ID:          slug,
		Title:       page.Title,
		Slug:        slug,
		PageURL:     page.URL,
		Categories:  categories,
		Poster:      page.Poster,
		Description: page.Description,
		ExtractedAt: extractedAt,
		Candidates:  candidates,
		Sources:     sources,
	}

	best, ok := chooseBest(sources)
	if !ok {
		entry.Note = unresolvedNote
		return entry
	}
	entry.BestSource = &best

	repro, alt := reproductionCommands(best, page.Title)
	entry.Reproduce = &repro
	entry.AltCommand = alt
	return entry
}

// chooseBest applies the ranking rule: the first mp4/m4a descriptor wins
// immediately; otherwise the first descriptor whose URL carries a manifest
// marker is retained as the weaker match.
func chooseBest(sources []SourceDescriptor) (SourceDescriptor, bool) {
	var manifest *SourceDescriptor
	for i, s := range sources {
		if s.Ext == ExtMP4 || s.Ext == ExtM4A {
			return s, true
		}
		if manifest == nil && strings.Contains(s.URL, ".m3u8") {
			manifest = &sources[i]
		}
	}
	if manifest != nil {
		return *manifest, true
	}
	return SourceDescriptor{}, false
}

// reproductionCommands builds the suggested download invocation for a best
// source. A manifest gets a segment-copy remux through ffmpeg plus a yt-dlp
// alternative; a direct container gets a single yt-dlp fetch-and-save.
func reproductionCommands(best SourceDescriptor, title string) (Invocation, *Invocation) {
	name := SanitizeFilename(title)
	if name == "" {
		name = "video"
	}

	if strings.Contains(best.URL, ".m3u8") {
		remux := Invocation{
			Program: "ffmpeg",
			Args:    []string{"-y", "-i", best.URL, "-c", "copy", name + ".mp4"},
		}
		alt := Invocation{
			Program: "yt-dlp",
			Args:    []string{"-o", name + ".%(ext)s", best.URL},
		}
		return remux, &alt
	}

	fetch := Invocation{
		Program: "yt-dlp",
		Args:    []string{"-o", name + ".%(ext)s", best.URL},
	}
	return fetch, nil
}
