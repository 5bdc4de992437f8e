package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netmon"

type Metrics struct {
	registry       *prometheus.Registry
	ActionsTotal   *prometheus.CounterVec
	FlushActions   prometheus.Histogram
	FlushDuration  prometheus.Histogram
	Requests       prometheus.Gauge
	Displayed      prometheus.Gauge
	SourceEvents   *prometheus.CounterVec
	EnrichTotal    *prometheus.CounterVec
	EnrichFailures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions applied to the request state, by kind",
		}, []string{"kind"}),
		FlushActions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_actions",
			Help:      "Actions applied per queue flush",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent applying one queue flush",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Requests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests",
			Help:      "Requests currently tracked",
		}),
		Displayed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "displayed_requests",
			Help:      "Requests passing the active filters",
		}),
		SourceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_events_total",
			Help:      "Events read from the event source, by type",
		}, []string{"type"}),
		EnrichTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_total",
			Help:      "Long string fetches started, by purpose",
		}, []string{"purpose"}),
		EnrichFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrich_failures_total",
			Help:      "Long string fetches that failed, by purpose",
		}, []string{"purpose"}),
	}
	r.MustRegister(
		m.ActionsTotal,
		m.FlushActions,
		m.FlushDuration,
		m.Requests,
		m.Displayed,
		m.SourceEvents,
		m.EnrichTotal,
		m.EnrichFailures,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The methods below accept a nil receiver so callers can run without metrics.

func (m *Metrics) ObserveAction(kind string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFlush(actions int, d time.Duration) {
	if m == nil {
		return
	}
	m.FlushActions.Observe(float64(actions))
	m.FlushDuration.Observe(d.Seconds())
}

func (m *Metrics) SetCounts(requests, displayed int) {
	if m == nil {
		return
	}
	m.Requests.Set(float64(requests))
	m.Displayed.Set(float64(displayed))
}

func (m *Metrics) ObserveSourceEvent(kind string) {
	if m == nil {
		return
	}
	m.SourceEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEnrich(purpose string, err error) {
	if m == nil {
		return
	}
	m.EnrichTotal.WithLabelValues(purpose).Inc()
	if err != nil {
		m.EnrichFailures.WithLabelValues(purpose).Inc()
	}
}
