package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/api/fraud/summary", "200"))
	ObserveAPIRequest("/api/fraud/summary", 200, 0.02)
	after := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/api/fraud/summary", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveAPIRequest_TransportErrorLabel(t *testing.T) {
	before := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/api/system/health", "error"))
	ObserveAPIRequest("/api/system/health", 0, 30)
	after := testutil.ToFloat64(apiRequestsTotal.WithLabelValues("/api/system/health", "error"))
	assert.Equal(t, before+1, after)
}

func TestObserveCacheLookup(t *testing.T) {
	ObserveCacheLookup("stats", true)
	ObserveCacheLookup("stats", false)
	ObserveCacheLookup("stats", false)

	assert.GreaterOrEqual(t, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("stats", "hit")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("stats", "miss")), 2.0)
}

func TestSetSessionsActive(t *testing.T) {
	SetSessionsActive(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(sessionsActive))
	SetSessionsActive(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(sessionsActive))
}
