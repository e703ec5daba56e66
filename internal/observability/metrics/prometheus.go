// Package metrics provides Prometheus metrics for resource validation and
// vital-sign classification.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Validation outcomes used as the result label.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds all application metrics
type Metrics struct {
	Validations        *prometheus.CounterVec
	Violations         *prometheus.CounterVec
	Classifications    *prometheus.CounterVec
	ExtensionChecks    *prometheus.CounterVec
	CacheLookups       *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	BatchInFlight      prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates all metrics and registers them on reg. A nil reg gets a
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_validations_total",
			Help: "Resources validated, by kind and result",
		}, []string{"kind", "result"}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_violations_total",
			Help: "Violations reported, by resource kind and violation kind",
		}, []string{"resource", "kind"}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_vital_classifications_total",
			Help: "Vital-sign channels classified, by channel and severity",
		}, []string{"channel", "severity"}),
		ExtensionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_extension_checks_total",
			Help: "EMR extension records checked, by result",
		}, []string{"result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "emr_validation_cache_lookups_total",
			Help: "Validation result cache lookups (hit or miss)",
		}, []string{"outcome"}),
		ProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emr_processing_duration_seconds",
			Help:    "Processing duration by operation",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		}, []string{"operation"}),
		BatchInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "emr_batch_items_in_flight",
			Help: "Batch items currently being validated",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Validations,
		m.Violations,
		m.Classifications,
		m.ExtensionChecks,
		m.CacheLookups,
		m.ProcessingDuration,
		m.BatchInFlight,
	)

	return m
}

// Gatherer returns the registry the metrics were registered on.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
