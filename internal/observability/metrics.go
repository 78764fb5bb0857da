// Package observability exposes Prometheus metrics for chart extraction and
// an HTTP server that publishes them during a batch run.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "surf_ocr"

// Metrics holds the Prometheus counters and histograms for the extraction pipeline.
type Metrics struct {
	// Charts counts chart attempts. labels: outcome={extracted,failed}
	Charts *prometheus.CounterVec

	// FetchErrors counts failed chart downloads. labels: reason={status,transport,other}
	FetchErrors *prometheus.CounterVec

	// FieldFallbacks counts fields that defaulted to 0.0. labels: status={missing,unparseable,out_of_range}
	FieldFallbacks *prometheus.CounterVec

	ExtractDuration prometheus.Histogram
	RecordsWritten  prometheus.Counter
}

// NewMetrics creates and registers all extraction metrics with reg. A nil
// registerer uses the Prometheus default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := newMetrics()
	reg.MustRegister(
		m.Charts,
		m.FetchErrors,
		m.FieldFallbacks,
		m.ExtractDuration,
		m.RecordsWritten,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Charts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_total",
			Help:      "Chart extraction attempts by outcome.",
		}, []string{"outcome"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Chart downloads that produced no image, by reason.",
		}, []string{"reason"}),
		FieldFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_fallbacks_total",
			Help:      "Record fields that fell back to 0.0, by parse status.",
		}, []string{"status"}),
		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Duration of one chart fetch, decompose and parse.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Records handed to the dataset sink.",
		}),
	}
}
