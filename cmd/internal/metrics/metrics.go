// Package metrics provides Prometheus collectors for the search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "okblog_search"

// Metrics holds the collectors shared by the search service components.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ESRequests       *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	CacheLookups     *prometheus.CounterVec
	LogEventsDropped prometheus.Counter
	LogEventsFailed  prometheus.Counter
	LogEventsShipped prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		ESRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "elasticsearch_requests_total",
				Help:      "Total number of Elasticsearch requests",
			},
			[]string{"operation", "status"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_search_duration_seconds",
				Help:      "Round-trip time of search calls to Elasticsearch",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Search result cache lookups by result",
			},
			[]string{"result"},
		),
		LogEventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_events_dropped_total",
				Help:      "Log events dropped because the sink queue was full",
			},
		),
		LogEventsFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_events_failed_total",
				Help:      "Log events that could not be written to Elasticsearch",
			},
		),
		LogEventsShipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_events_shipped_total",
				Help:      "Log events written to Elasticsearch",
			},
		),
	}
}

// NewNop returns collectors bound to a private registry, for tests and
// components built without a shared registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
