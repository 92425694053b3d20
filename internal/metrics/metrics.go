// Package metrics provides custom Prometheus metrics for the query cache and
// the REST API client.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryCacheMetrics contains all Prometheus metrics related to query cache operations.
type QueryCacheMetrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	Refetches          prometheus.Counter
	CollapsedRequests  prometheus.Counter
	Invalidations      prometheus.Counter
	DiscardedResults   prometheus.Counter
	OptimisticEdits    prometheus.Counter
	Rollbacks          prometheus.Counter
	registry           *prometheus.Registry
}

// NewQueryCacheMetrics creates a new instance of QueryCacheMetrics registered
// against the given Prometheus registry.
func NewQueryCacheMetrics(registry *prometheus.Registry) (*QueryCacheMetrics, error) {
	m := &QueryCacheMetrics{registry: registry}
	m.initMetrics()
	collectors := []prometheus.Collector{
		m.CacheHits, m.CacheMisses, m.Refetches, m.CollapsedRequests,
		m.Invalidations, m.DiscardedResults, m.OptimisticEdits, m.Rollbacks,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register query cache metrics: %w", err)
		}
	}
	return m, nil
}

func (m *QueryCacheMetrics) initMetrics() {
	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_hits_total",
		Help: "Total number of query cache hits.",
	})
	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_misses_total",
		Help: "Total number of query cache misses.",
	})
	m.Refetches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_refetches_total",
		Help: "Total number of background refetches triggered by staleness or invalidation.",
	})
	m.CollapsedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_collapsed_requests_total",
		Help: "Total number of concurrent identical queries collapsed into a shared fetch.",
	})
	m.Invalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_invalidations_total",
		Help: "Total number of cache entries marked stale by invalidation.",
	})
	m.DiscardedResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_discarded_results_total",
		Help: "Total number of fetch results discarded because their generation was superseded.",
	})
	m.OptimisticEdits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_optimistic_edits_total",
		Help: "Total number of optimistic cache edits applied by mutations.",
	})
	m.Rollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_rollbacks_total",
		Help: "Total number of optimistic edits rolled back after a failed mutation.",
	})
}

// IncrementCacheHits increases the cache hit counter by one.
func (m *QueryCacheMetrics) IncrementCacheHits() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// IncrementCacheMisses increases the cache miss counter by one.
func (m *QueryCacheMetrics) IncrementCacheMisses() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

// IncrementRefetches increases the refetch counter by one.
func (m *QueryCacheMetrics) IncrementRefetches() {
	if m != nil {
		m.Refetches.Inc()
	}
}

// IncrementCollapsedRequests increases the collapsed request counter by one.
func (m *QueryCacheMetrics) IncrementCollapsedRequests() {
	if m != nil {
		m.CollapsedRequests.Inc()
	}
}

// IncrementInvalidations increases the invalidation counter by n.
func (m *QueryCacheMetrics) IncrementInvalidations(n int) {
	if m != nil {
		m.Invalidations.Add(float64(n))
	}
}

// IncrementDiscardedResults increases the discarded result counter by one.
func (m *QueryCacheMetrics) IncrementDiscardedResults() {
	if m != nil {
		m.DiscardedResults.Inc()
	}
}

// IncrementOptimisticEdits increases the optimistic edit counter by one.
func (m *QueryCacheMetrics) IncrementOptimisticEdits() {
	if m != nil {
		m.OptimisticEdits.Inc()
	}
}

// IncrementRollbacks increases the rollback counter by one.
func (m *QueryCacheMetrics) IncrementRollbacks() {
	if m != nil {
		m.Rollbacks.Inc()
	}
}

// APIMetrics contains all Prometheus metrics related to REST API calls.
type APIMetrics struct {
	Requests        *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	registry        *prometheus.Registry
}

// NewAPIMetrics creates a new instance of APIMetrics registered against the
// given Prometheus registry.
func NewAPIMetrics(registry *prometheus.Registry) (*APIMetrics, error) {
	m := &APIMetrics{registry: registry}
	m.initMetrics()
	for _, c := range []prometheus.Collector{m.Requests, m.Errors, m.RequestDuration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register API metrics: %w", err)
		}
	}
	return m, nil
}

func (m *APIMetrics) initMetrics() {
	m.Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of REST API requests.",
	}, []string{"method", "endpoint"})
	m.Errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_errors_total",
		Help: "Total number of failed REST API requests.",
	}, []string{"method", "endpoint", "kind"})
	m.RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of REST API requests in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"method", "endpoint"})
}

// ObserveRequest records one API request and its duration.
func (m *APIMetrics) ObserveRequest(method, endpoint string, seconds float64) {
	if m != nil {
		m.Requests.WithLabelValues(method, endpoint).Inc()
		m.RequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
	}
}

// IncrementErrors records one failed API request of the given kind.
func (m *APIMetrics) IncrementErrors(method, endpoint, kind string) {
	if m != nil {
		m.Errors.WithLabelValues(method, endpoint, kind).Inc()
	}
}
