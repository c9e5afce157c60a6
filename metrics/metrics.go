package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 服务的 Prometheus 指标，nil 接收者上的方法均为空操作
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	skippedRecords   *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	staleInquiries   prometheus.Gauge
	subscribers      prometheus.Gauge
	eventsDropped    prometheus.Counter
}

// New 创建并注册指标，reg 为 nil 时注册到默认注册表
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carehome",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carehome",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carehome",
			Subsystem: "pipeline",
			Name:      "skipped_records_total",
			Help:      "Malformed inquiry records skipped by the query and analytics engine",
		}, []string{"operation"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carehome",
			Subsystem: "pipeline",
			Name:      "status_transitions_total",
			Help:      "Inquiry status transitions",
		}, []string{"from", "to"}),
		staleInquiries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carehome",
			Subsystem: "pipeline",
			Name:      "stale_inquiries",
			Help:      "Non-terminal inquiries found stuck by the last sweep",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carehome",
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Connected event stream subscribers",
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carehome",
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber buffer was full",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.requestsTotal,
		m.requestLatency,
		m.skippedRecords,
		m.transitionsTotal,
		m.staleInquiries,
		m.subscribers,
		m.eventsDropped,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveSkipped(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedRecords.WithLabelValues(operation).Add(float64(n))
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SetStaleInquiries(n int) {
	if m == nil {
		return
	}
	m.staleInquiries.Set(float64(n))
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

func (m *Metrics) ObserveDroppedEvent() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}
