package metrics_adapter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics реализует MetricsPort. Регистрирует метрики в собственном
// реестре, чтобы в тестах можно было создавать несколько экземпляров.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheTotal    *prometheus.CounterVec
	subscriptions *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_fetch_total",
				Help: "Total number of listing page fetches by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "listing_fetch_duration_seconds",
				Help:    "Duration of listing page fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		cacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_cache_total",
				Help: "Listing cache lookups by result",
			},
			[]string{"result"},
		),
		subscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_subscriptions_total",
				Help: "Newsletter subscription attempts by result",
			},
			[]string{"result"},
		),
	}
}

func (m *PrometheusMetrics) ObserveFetch(outcome string, duration time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) ObserveCache(result string) {
	m.cacheTotal.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) ObserveSubscription(result string) {
	m.subscriptions.WithLabelValues(result).Inc()
}

// Handler отдает метрики для GET /metrics
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}
