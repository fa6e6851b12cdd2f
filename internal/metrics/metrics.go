package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the refresh instrumentation on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	RecordsLoaded   prometheus.Gauge
	LastSuccess     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_refresh_total",
				Help: "Dataset refreshes by outcome and error kind",
			},
			[]string{"outcome", "kind"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dashboard_refresh_duration_seconds",
				Help:    "Time to fetch, normalize and aggregate the dataset",
				Buckets: prometheus.DefBuckets,
			},
		),
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_records_loaded",
			Help: "Records in the current snapshot",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_last_refresh_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),
	}
	reg.MustRegister(
		m.RefreshTotal, m.RefreshDuration, m.RecordsLoaded, m.LastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRefresh records one refresh. kind is empty on success.
func (m *Metrics) ObserveRefresh(elapsed time.Duration, records int, kind string) {
	m.RefreshDuration.Observe(elapsed.Seconds())
	if kind != "" {
		m.RefreshTotal.WithLabelValues("failure", kind).Inc()
		return
	}
	m.RefreshTotal.WithLabelValues("success", "").Inc()
	m.RecordsLoaded.Set(float64(records))
	m.LastSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
