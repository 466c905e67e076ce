// Package metrics records Prometheus metrics for sync runs and backend calls.
//
// secret-sync is a short-lived CLI, so metrics are written to a file in the
// node_exporter textfile format (--metrics-file) instead of being served.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Backend call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	filesTotal   *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	backendCalls *prometheus.CounterVec
	lastRun      *prometheus.GaugeVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_sync_runs_total",
				Help: "Total number of pull/push runs",
			},
			[]string{"operation", "status"},
		),
		filesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_sync_files_total",
				Help: "Total number of secret files synchronized successfully",
			},
			[]string{"operation"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secret_sync_run_duration_seconds",
				Help:    "Duration of pull/push runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"operation"},
		),
		backendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_sync_backend_calls_total",
				Help: "Total number of secret store calls by outcome",
			},
			[]string{"backend", "call", "outcome"},
		),
		lastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secret_sync_last_run_success",
				Help: "Whether the last run succeeded (1) or failed (0)",
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records the end of a pull or push run. files is the number of
// entries that completed.
func (m *Metrics) RecordRun(operation, status string, files int, durationSeconds float64) {
	if m == nil {
		return
	}

	m.runsTotal.WithLabelValues(operation, status).Inc()
	m.filesTotal.WithLabelValues(operation).Add(float64(files))
	m.runDuration.WithLabelValues(operation).Observe(durationSeconds)

	if status == StatusSuccess {
		m.lastRun.WithLabelValues(operation).Set(1)
	} else {
		m.lastRun.WithLabelValues(operation).Set(0)
	}
}

// RecordBackendCall records one secret store call.
func (m *Metrics) RecordBackendCall(backend, call, outcome string) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(backend, call, outcome).Inc()
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
