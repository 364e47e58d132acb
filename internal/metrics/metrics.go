package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the backend.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	LikeTogglesTotal *prometheus.CounterVec

	FanoutEventsTotal     *prometheus.CounterVec
	FanoutRecipientErrors prometheus.Counter

	ReconcileDriftTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics instance, registering collectors on
// first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crest_http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "crest_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),
			CacheHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crest_cache_hits_total",
				Help: "Cache hits by cache name",
			}, []string{"cache"}),
			CacheMissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crest_cache_misses_total",
				Help: "Cache misses by cache name",
			}, []string{"cache"}),
			LikeTogglesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crest_like_toggles_total",
				Help: "Like toggles by target kind and resulting state",
			}, []string{"target_kind", "state"}),
			FanoutEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crest_fanout_events_total",
				Help: "Notification fan-out events by type",
			}, []string{"type"}),
			FanoutRecipientErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "crest_fanout_recipient_errors_total",
				Help: "Per-recipient notification failures (logged, not surfaced)",
			}),
			ReconcileDriftTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "crest_reconcile_drift_total",
				Help: "Counters fixed by the engagement reconciler",
			}),
		}
	})
	return instance
}

// RecordCacheHit increments the hit counter for a named cache.
func RecordCacheHit(cache string) {
	Get().CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache.
func RecordCacheMiss(cache string) {
	Get().CacheMissesTotal.WithLabelValues(cache).Inc()
}
