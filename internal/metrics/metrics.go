// Package metrics defines the Prometheus instruments shared by the gateway client,
// the cache registry and the state server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bankdash"

// Define metrics with promauto for auto-registration
var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests issued to the remote banking API",
		},
		[]string{"endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Latency of requests to the remote banking API",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache registry freshness checks by result",
		},
		[]string{"key", "result"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Orchestrator sessions held by the state server",
		},
	)
)

// ObserveAPIRequest records one gateway call. status is 0 for transport errors.
func ObserveAPIRequest(endpoint string, status int, seconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(endpoint, label).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveCacheLookup records a freshness check.
func ObserveCacheLookup(key string, fresh bool) {
	result := "miss"
	if fresh {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(key, result).Inc()
}

// SetSessionsActive publishes the current session count.
func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}
