// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal      *prometheus.CounterVec
	candidatesTotal *prometheus.CounterVec
	entriesTotal    *prometheus.CounterVec
	captureSeconds  prometheus.Histogram

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_pages_total",
				Help: "Post pages processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		candidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_candidates_total",
				Help: "Candidate URLs resolved, labeled by tier and outcome.",
			},
			[]string{"tier", "outcome"},
		)

		entriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_entries_total",
				Help: "Entries written to the sink, labeled by resolution state.",
			},
			[]string{"state"},
		)

		captureSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_capture_duration_seconds",
				Help:    "Wall-clock duration of browser capture sessions.",
				Buckets: []float64{1, 2, 5, 10, 20, 45},
			},
		)
	})
}

// PageProcessed records one processed (or skipped/failed) post page.
func PageProcessed(outcome string) {
	if pagesTotal != nil {
		pagesTotal.WithLabelValues(outcome).Inc()
	}
}

// CandidateResolved records one candidate resolution attempt.
func CandidateResolved(tier, outcome string) {
	if candidatesTotal != nil {
		candidatesTotal.WithLabelValues(tier, outcome).Inc()
	}
}

// EntryWritten records one entry flushed to the sink.
func EntryWritten(resolved bool) {
	if entriesTotal == nil {
		return
	}
	state := "resolved"
	if !resolved {
		state = "unresolved"
	}
	entriesTotal.WithLabelValues(state).Inc()
}

// ObserveCapture records the duration of one browser capture session.
func ObserveCapture(seconds float64) {
	if captureSeconds != nil {
		captureSeconds.Observe(seconds)
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
