package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	ReadingsSubmitted prometheus.Counter
	ReadingsDeleted   prometheus.Counter
	ReadingsRejected  prometheus.Counter
	StoredRows        prometheus.Gauge

	// ValidationWarnings counts safe-range warnings by parameter.
	ValidationWarnings *prometheus.CounterVec // label: parameter

	// Geocoding metrics.
	ZipResolutions     *prometheus.CounterVec // label: source={geocoder,nearest}
	GeocodeRequests    *prometheus.CounterVec // label: outcome={success,error,empty}
	GeocodeAPIDuration prometheus.Histogram

	SummarizeDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "readings_submitted_total",
			Help:      "Total readings accepted into the store.",
		}),
		ReadingsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "readings_deleted_total",
			Help:      "Total readings removed by positional delete.",
		}),
		ReadingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "readings_rejected_total",
			Help:      "Total submissions rejected by zip validation or strict-mode warnings.",
		}),
		StoredRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterquality",
			Name:      "stored_rows",
			Help:      "Rows currently in the readings store.",
		}),
		ValidationWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "validation_warnings_total",
			Help:      "Safe-range warnings produced at submission, by parameter.",
		}, []string{"parameter"}),
		ZipResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "zip_resolutions_total",
			Help:      "Coordinate-to-zip resolutions by source.",
		}, []string{"source"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterquality",
			Name:      "geocode_requests_total",
			Help:      "Reverse-geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waterquality",
			Name:      "geocode_api_duration_seconds",
			Help:      "Reverse-geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SummarizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waterquality",
			Name:      "summarize_duration_seconds",
			Help:      "Duration of a full per-zip aggregation pass.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}

	prometheus.MustRegister(
		m.ReadingsSubmitted,
		m.ReadingsDeleted,
		m.ReadingsRejected,
		m.StoredRows,
		m.ValidationWarnings,
		m.ZipResolutions,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.SummarizeDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsSubmitted:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterquality", Name: "readings_submitted_total"}),
		ReadingsDeleted:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterquality", Name: "readings_deleted_total"}),
		ReadingsRejected:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterquality", Name: "readings_rejected_total"}),
		StoredRows:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterquality", Name: "stored_rows"}),
		ValidationWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterquality", Name: "validation_warnings_total"}, []string{"parameter"}),
		ZipResolutions:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterquality", Name: "zip_resolutions_total"}, []string{"source"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterquality", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "waterquality", Name: "geocode_api_duration_seconds"}),
		SummarizeDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "waterquality", Name: "summarize_duration_seconds"}),
	}
}
