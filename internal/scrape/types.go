// Package scrape defines the core types and components of the video source
// harvesting pipeline: page records, source descriptors, the tiered resolver,
// entry assembly, and the crawl frontier that drives them.
package scrape

import (
	"time"
)

// SourceMethod identifies which resolution tier produced a descriptor.
type SourceMethod string

// Resolution tiers, in the order they are attempted.
const (
	MethodMetadataExtract SourceMethod = "metadata-extract"
	MethodBrowserCapture  SourceMethod = "browser-capture"
)

// Ext is the media container or manifest type inferred for a source URL.
type Ext string

// Known container and manifest types. ExtOther covers anything the
// classifier cannot place.
const (
	ExtMP4   Ext = "mp4"
	ExtM4A   Ext = "m4a"
	ExtWebM  Ext = "webm"
	ExtTS    Ext = "ts"
	ExtM3U8  Ext = "m3u8"
	ExtOther Ext = "other"
)

// PageRecord is the parsed form of a fetched post page. It is produced once
// by the extractor and never mutated afterwards.
type PageRecord struct {
	URL           string
	Title         string
	Poster        string
	Description   string
	CategoryTags  []string
	OutboundLinks []string
}

// FormatVariant is one format reported by the metadata-extraction backend.
// Height and Bitrate are zero when the backend does not report them.
type FormatVariant struct {
	FormatID string  `json:"format_id"`
	Ext      string  `json:"ext"`
	Height   int     `json:"height"`
	Bitrate  float64 `json:"tbr"`
	URL      string  `json:"url"`
}

// MediaInfo is the result of the metadata-extraction backend for one
// candidate. Either URL/Ext describe a single direct asset, or Formats lists
// the variants to choose from. A zero MediaInfo means the backend found
// nothing usable.
type MediaInfo struct {
	URL     string          `json:"url"`
	Ext     string          `json:"ext"`
	Formats []FormatVariant `json:"formats"`
}

// Empty reports whether the backend produced neither a direct URL nor any
// format variants.
func (m MediaInfo) Empty() bool {
	return m.URL == "" && len(m.Formats) == 0
}

// QualityHint carries optional resolution/bitrate information for a source.
type QualityHint struct {
	Height  int     `json:"height,omitempty"`
	Bitrate float64 `json:"bitrate,omitempty"`
}

// SourceDescriptor is one directly addressable media asset resolved from a
// candidate URL. Descriptors are immutable once emitted.
type SourceDescriptor struct {
	Method   SourceMethod `json:"method"`
	URL      string       `json:"url"`
	Ext      Ext          `json:"ext"`
	Quality  *QualityHint `json:"quality_hint,omitempty"`
	FormatID string       `json:"format_id,omitempty"`
}

// Invocation is a structured external command: program plus argument list,
// never a shell string.
type Invocation struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

// VideoEntry is the unit of output: one resolved post page with its
// candidates, resolved sources, and the ranked best source. Written once,
// never updated.
type VideoEntry struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	PageURL     string             `json:"page_url"`
	Categories  []string           `json:"categories"`
	Poster      string             `json:"poster,omitempty"`
	Description string             `json:"description,omitempty"`
	ExtractedAt time.Time          `json:"extracted_at"`
	Candidates  []string           `json:"candidates"`
	Sources     []SourceDescriptor `json:"sources"`
	BestSource  *SourceDescriptor  `json:"best_source,omitempty"`
	Reproduce   *Invocation        `json:"reproduction_command,omitempty"`
	AltCommand  *Invocation        `json:"alt_command,omitempty"`
	Note        string             `json:"note,omitempty"`
}
