package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "/api/inquiries", 200, 0.02)
	m.ObserveRequest("GET", "/api/inquiries", 200, 0.03)
	m.ObserveSkipped("query", 2)
	m.ObserveSkipped("query", 0)
	m.ObserveTransition("NEW", "CONTACTED")
	m.SetStaleInquiries(4)
	m.SetSubscribers(1)
	m.ObserveDroppedEvent()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/inquiries", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedRecords.WithLabelValues("query")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("NEW", "CONTACTED")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.staleInquiries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, 0.1)
	m.ObserveSkipped("analytics", 1)
	m.ObserveTransition("NEW", "CONTACTED")
	m.SetStaleInquiries(1)
	m.SetSubscribers(1)
	m.ObserveDroppedEvent()
}
