// Package metrics declares the process's Prometheus collectors for
// fan-out and cache instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the fan-out engine and cache layer
// report to. Construct once per process and register with a
// prometheus.Registerer at startup.
type Metrics struct {
	FanoutRequests   *prometheus.CounterVec
	FanoutLatency    *prometheus.HistogramVec
	AdapterErrors    *prometheus.CounterVec
	CacheHits        *prometheus.CounterVec
	CacheLookupTotal prometheus.Counter
}

// New builds a Metrics bundle. Callers must register it with a
// prometheus.Registerer (e.g. prometheus.DefaultRegisterer) before
// collectors start reporting non-zero values.
func New() *Metrics {
	return &Metrics{
		FanoutRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questionrouter",
			Subsystem: "fanout",
			Name:      "requests_total",
			Help:      "Number of search requests dispatched, labeled by outcome.",
		}, []string{"outcome"}),
		FanoutLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "questionrouter",
			Subsystem: "fanout",
			Name:      "request_duration_seconds",
			Help:      "Search request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		AdapterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questionrouter",
			Subsystem: "fanout",
			Name:      "adapter_errors_total",
			Help:      "Adapter call failures, labeled by provider and error kind.",
		}, []string{"provider", "error_kind"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questionrouter",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups, labeled by tier and hit/miss.",
		}, []string{"tier", "result"}),
		CacheLookupTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "questionrouter",
			Subsystem: "cache",
			Name:      "questions_seen_total",
			Help:      "Question lookups performed by the fan-out engine, one per search request.",
		}),
	}
}

// MustRegister registers every collector with r, panicking on a
// duplicate-registration error (a startup-time programming error, not a
// runtime condition to recover from).
func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(m.FanoutRequests, m.FanoutLatency, m.AdapterErrors, m.CacheHits, m.CacheLookupTotal)
}
