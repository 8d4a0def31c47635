package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// data-fusion layer.
type Metrics struct {
	FIRMSRequests        *prometheus.CounterVec // labels: outcome={success,upstream_error,rejected}
	FIRMSUpstreamLatency prometheus.Histogram
	FIRMSRowsSkipped     prometheus.Counter
	HotspotCache         *prometheus.CounterVec // labels: result={hit,miss}

	GEERequests *prometheus.CounterVec   // labels: operation={list,reduce,count}, outcome={success,error}
	GEELatency  *prometheus.HistogramVec // labels: operation
	GEEEnabled  prometheus.Gauge

	AlertsPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FIRMSRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "firms_requests_total",
			Help:      "FIRMS hotspot queries by outcome.",
		}, []string{"outcome"}),
		FIRMSUpstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "firms_upstream_duration_seconds",
			Help:      "FIRMS upstream fetch duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FIRMSRowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "firms_rows_skipped_total",
			Help:      "CSV rows dropped for structural validation failures.",
		}),
		HotspotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "hotspot_cache_total",
			Help:      "Hotspot cache lookups by result.",
		}, []string{"result"}),
		GEERequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "gee_requests_total",
			Help:      "Analysis backend requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		GEELatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "gee_request_duration_seconds",
			Help:      "Analysis backend request duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		GEEEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire",
			Name:      "gee_enabled",
			Help:      "1 when the analysis backend is initialized, 0 otherwise.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "alerts_published_total",
			Help:      "Alert events published to Kafka.",
		}),
	}

	prometheus.MustRegister(
		m.FIRMSRequests,
		m.FIRMSUpstreamLatency,
		m.FIRMSRowsSkipped,
		m.HotspotCache,
		m.GEERequests,
		m.GEELatency,
		m.GEEEnabled,
		m.AlertsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FIRMSRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire", Name: "firms_requests_total"}, []string{"outcome"}),
		FIRMSUpstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire", Name: "firms_upstream_duration_seconds"}),
		FIRMSRowsSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "firms_rows_skipped_total"}),
		HotspotCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire", Name: "hotspot_cache_total"}, []string{"result"}),
		GEERequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire", Name: "gee_requests_total"}, []string{"operation", "outcome"}),
		GEELatency:           prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "wildfire", Name: "gee_request_duration_seconds"}, []string{"operation"}),
		GEEEnabled:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire", Name: "gee_enabled"}),
		AlertsPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "alerts_published_total"}),
	}
}
