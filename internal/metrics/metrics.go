// Package metrics holds the Prometheus collectors for report generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as the reason label of report_failed_total.
const (
	ReasonUnavailable = "unavailable"
	ReasonRowSource   = "row_source"
	ReasonEncoding    = "encoding"
)

// Reports records report outcomes per format.
type Reports struct {
	generated *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	size      *prometheus.HistogramVec
}

// NewReports registers the report collectors on reg.
func NewReports(reg prometheus.Registerer) *Reports {
	f := promauto.With(reg)
	return &Reports{
		generated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_generated_total",
				Help: "Total number of reports generated",
			},
			[]string{"format"},
		),
		failed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_failed_total",
				Help: "Total number of report requests that failed",
			},
			[]string{"format", "reason"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_generation_duration_seconds",
				Help:    "Time spent fetching rows and encoding a report",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		size: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_size_bytes",
				Help:    "Size of generated report payloads",
				Buckets: prometheus.ExponentialBuckets(256, 4, 10),
			},
			[]string{"format"},
		),
	}
}

// Generated records a successful report of n bytes.
func (m *Reports) Generated(format string, n int, elapsed time.Duration) {
	m.generated.WithLabelValues(format).Inc()
	m.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	m.size.WithLabelValues(format).Observe(float64(n))
}

// Failed records a failed report.
func (m *Reports) Failed(format, reason string) {
	m.failed.WithLabelValues(format, reason).Inc()
}
