package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the exploration service emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Derivation pipeline
	RecomputeDuration   HistogramVec
	VisibleCompounds    GaugeVec
	SelectionSize       GaugeVec
	DoseCommitsTotal    CounterVec

	// Embedding loader
	EmbeddingLoadsTotal   CounterVec
	EmbeddingLoadDuration HistogramVec
	EmbeddingCacheHits    CounterVec
	EmbeddingCacheMisses  CounterVec
	EmbeddingStaleDrops   CounterVec

	// Resource fetcher
	FetchesTotal  CounterVec
	FetchDuration HistogramVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultDeriveBuckets        = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultFetchDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// NewAppMetrics registers the full metric set against the given collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.RecomputeDuration = collector.RegisterHistogram("pipeline_recompute_duration_seconds", "Derived-state recompute duration", DefaultDeriveBuckets, "trigger")
	m.VisibleCompounds = collector.RegisterGauge("pipeline_visible_compounds", "Compounds surviving the current filters", "session")
	m.SelectionSize = collector.RegisterGauge("pipeline_selection_size", "Compounds in the embedding selection set", "session")
	m.DoseCommitsTotal = collector.RegisterCounter("pipeline_dose_commits_total", "Committed dose parameter changes")

	m.EmbeddingLoadsTotal = collector.RegisterCounter("embedding_loads_total", "Embedding coordinate loads", "outcome")
	m.EmbeddingLoadDuration = collector.RegisterHistogram("embedding_load_duration_seconds", "Embedding coordinate load duration", DefaultFetchDurationBuckets)
	m.EmbeddingCacheHits = collector.RegisterCounter("embedding_cache_hits_total", "Embedding cache hits")
	m.EmbeddingCacheMisses = collector.RegisterCounter("embedding_cache_misses_total", "Embedding cache misses")
	m.EmbeddingStaleDrops = collector.RegisterCounter("embedding_stale_drops_total", "Superseded embedding loads discarded before commit")

	m.FetchesTotal = collector.RegisterCounter("fetches_total", "External resource fetches", "backend", "outcome")
	m.FetchDuration = collector.RegisterHistogram("fetch_duration_seconds", "External resource fetch duration", DefaultFetchDurationBuckets, "backend")

	return m
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEmbeddingLoad records one coordinate load attempt.
func (m *AppMetrics) RecordEmbeddingLoad(err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EmbeddingLoadsTotal.WithLabelValues(outcome).Inc()
	m.EmbeddingLoadDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordEmbeddingCache records a memo cache lookup.
func (m *AppMetrics) RecordEmbeddingCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.EmbeddingCacheHits.WithLabelValues().Inc()
	} else {
		m.EmbeddingCacheMisses.WithLabelValues().Inc()
	}
}

// RecordEmbeddingStaleDrop records a superseded load discarded before delivery.
func (m *AppMetrics) RecordEmbeddingStaleDrop() {
	if m == nil {
		return
	}
	m.EmbeddingStaleDrops.WithLabelValues().Inc()
}

// RecordFetch records one external resource fetch.
func (m *AppMetrics) RecordFetch(backend string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchesTotal.WithLabelValues(backend, outcome).Inc()
	m.FetchDuration.WithLabelValues(backend).Observe(duration.Seconds())
}
