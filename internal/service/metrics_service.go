package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talentbridge/match-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for the admin statistics endpoint.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	computationDuration prometheus.Observer
	computationsTotal   prometheus.Counter
	computationFailures prometheus.Counter
	queueDepth          prometheus.Gauge
	cacheLatency        prometheus.Observer
	cacheHitRatio       prometheus.Gauge
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter

	cacheHitCount            uint64
	cacheMissCount           uint64
	requestCount             uint64
	requestDurationTotal     uint64
	computationCount         uint64
	computationDurationTotal uint64
	computationFailureCount  uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	computationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_computation_duration_seconds",
		Help:    "Duration of match score computations",
		Buckets: prometheus.DefBuckets,
	})

	computationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_computations_total",
		Help: "Total match score computations",
	})

	computationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_computation_failures_total",
		Help: "Total failed match score computations",
	})

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recomputation_queue_depth",
		Help: "Pending entries in the recomputation queue",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, computationDuration, computationsTotal, computationFailures, queueDepth, cacheLatency, cacheHitRatio, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		computationDuration: computationDuration,
		computationsTotal:   computationsTotal,
		computationFailures: computationFailures,
		queueDepth:          queueDepth,
		cacheLatency:        cacheLatency,
		cacheHitRatio:       cacheHitRatio,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveComputation records one score computation.
func (m *MetricsService) ObserveComputation(duration time.Duration) {
	if m == nil {
		return
	}
	m.computationDuration.Observe(duration.Seconds())
	m.computationsTotal.Inc()
	atomic.AddUint64(&m.computationCount, 1)
	atomic.AddUint64(&m.computationDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveComputationFailure records one failed computation.
func (m *MetricsService) ObserveComputationFailure() {
	if m == nil {
		return
	}
	m.computationFailures.Inc()
	atomic.AddUint64(&m.computationFailureCount, 1)
}

// SetQueueDepth publishes the current recomputation backlog size.
func (m *MetricsService) SetQueueDepth(pending int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(pending))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// Snapshot returns aggregated metrics for the admin statistics endpoint.
func (m *MetricsService) Snapshot() models.EngineSystemMetrics {
	if m == nil {
		return models.EngineSystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	computations := atomic.LoadUint64(&m.computationCount)
	compDuration := atomic.LoadUint64(&m.computationDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgComputationMs float64
	if computations > 0 {
		avgComputationMs = float64(compDuration) / float64(computations) / float64(time.Millisecond)
	}

	return models.EngineSystemMetrics{
		ComputationsTotal:        computations,
		ComputationFailures:      atomic.LoadUint64(&m.computationFailureCount),
		AverageComputationMs:     avgComputationMs,
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Goroutines:               runtime.NumGoroutine(),
	}
}
