package scrape

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/metrics"
)

// ResolverConfig controls the tiered resolution engine.
type ResolverConfig struct {
	// Workers bounds concurrent candidate resolution for one page.
	Workers int
	// CaptureSettle is how long the browser tier observes network traffic
	// after navigation before collecting results.
	CaptureSettle time.Duration
}

// Resolver runs the tiered resolution protocol: metadata extraction first,
// browser capture only when the first tier yields nothing. Tiers are never
// merged for the same candidate.
type Resolver struct {
	meta    MetadataExtractor
	capture Capturer
	cfg     ResolverConfig
	logger  *zap.Logger
}

// NewResolver builds a Resolver. capture may be nil, in which case the
// second tier is skipped entirely.
func NewResolver(meta MetadataExtractor, capture Capturer, cfg ResolverConfig, logger *zap.Logger) *Resolver {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.CaptureSettle <= 0 {
		cfg.CaptureSettle = 2 * time.Second
	}
	return &Resolver{
		meta:    meta,
		capture: capture,
		cfg:     cfg,
		logger:  logger,
	}
}

// Resolve runs both tiers for a single candidate and returns the ordered
// descriptors. An empty result is a valid terminal state, not an error.
func (r *Resolver) Resolve(ctx context.Context, candidate string) []SourceDescriptor {
	if descriptors := r.metadataTier(ctx, candidate); len(descriptors) > 0 {
		metrics.CandidateResolved(string(MethodMetadataExtract), "found")
		return descriptors
	}
	descriptors := r.captureTier(ctx, candidate)
	if len(descriptors) > 0 {
		metrics.CandidateResolved(string(MethodBrowserCapture), "found")
	} else {
		metrics.CandidateResolved(string(MethodBrowserCapture), "unresolved")
		r.logger.Info("candidate unresolved", zap.String("candidate", candidate))
	}
	return descriptors
}

// ResolveAll resolves every candidate of one page through a bounded worker
// pool. Duplicate candidates are resolved at most once; descriptor order
// follows candidate order regardless of which worker finished first.
func (r *Resolver) ResolveAll(ctx context.Context, candidates []string) []SourceDescriptor {
	unique := dedupeStrings(candidates)
	results := make([][]SourceDescriptor, len(unique))

	sem := make(chan struct{}, r.cfg.Workers)
	var wg sync.WaitGroup
	for i, c := range unique {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return flatten(results)
		}
		wg.Add(1)
		go func(idx int, candidate string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = r.Resolve(ctx, candidate)
		}(i, c)
	}
	wg.Wait()

	return flatten(results)
}

func (r *Resolver) metadataTier(ctx context.Context, candidate string) []SourceDescriptor {
	if r.meta == nil {
		return nil
	}
	info, err := r.meta.Extract(ctx, candidate)
	if err != nil {
		r.logger.Debug("metadata extraction yielded nothing",
			zap.String("candidate", candidate),
			zap.Error(err),
		)
		return nil
	}
	if info.Empty() {
		return nil
	}

	if len(info.Formats) > 0 {
		if best, ok := SelectFormat(info.Formats); ok {
			return []SourceDescriptor{descriptorForVariant(best)}
		}
		// No variant carried a resolvable URL; maybe the top level does.
	}
	if info.URL != "" {
		return []SourceDescriptor{{
			Method: MethodMetadataExtract,
			URL:    info.URL,
			Ext:    extFromString(info.Ext),
		}}
	}
	return nil
}

func (r *Resolver) captureTier(ctx context.Context, candidate string) []SourceDescriptor {
	if r.capture == nil {
		return nil
	}
	urls, err := r.capture.Capture(ctx, candidate, r.cfg.CaptureSettle)
	if err != nil {
		r.logger.Warn("browser capture failed",
			zap.String("candidate", candidate),
			zap.Error(err),
		)
		return nil
	}

	unique := dedupeStrings(urls)
	sort.Strings(unique)

	descriptors := make([]SourceDescriptor, 0, len(unique))
	for _, u := range unique {
		descriptors = append(descriptors, SourceDescriptor{
			Method: MethodBrowserCapture,
			URL:    u,
			Ext:    ExtForCapturedURL(u),
		})
	}
	return descriptors
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func flatten(groups [][]SourceDescriptor) []SourceDescriptor {
	var out []SourceDescriptor
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
