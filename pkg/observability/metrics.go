package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics recorded during a generation run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GenerationsTotal        *prometheus.CounterVec
	StageDuration           *prometheus.HistogramVec
	PluginsResolvedTotal    *prometheus.CounterVec
	PluginsSkippedTotal     *prometheus.CounterVec
	SourceFiles             prometheus.Gauge
	CompilerExecutionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protogen_generations_total",
				Help: "Total number of generation runs by final status",
			},
			[]string{"status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "protogen_stage_duration_seconds",
				Help:    "Time spent in each generation stage",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"stage"},
		),
		PluginsResolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protogen_plugins_resolved_total",
				Help: "Total number of protoc plugins resolved by kind",
			},
			[]string{"kind"},
		),
		PluginsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protogen_plugins_skipped_total",
				Help: "Total number of protoc plugins skipped by kind",
			},
			[]string{"kind"},
		),
		SourceFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "protogen_source_files",
				Help: "Number of compilable proto files in the last run",
			},
		),
		CompilerExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protogen_compiler_executions_total",
				Help: "Total number of compiler processes started by purpose and outcome",
			},
			[]string{"purpose", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.GenerationsTotal,
		m.StageDuration,
		m.PluginsResolvedTotal,
		m.PluginsSkippedTotal,
		m.SourceFiles,
		m.CompilerExecutionsTotal,
	)

	return m
}

// Registry exposes the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordGeneration counts a finished run
func (m *Metrics) RecordGeneration(status string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(status).Inc()
}

// RecordStage observes how long a stage took
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordPlugin counts a resolved or skipped plugin
func (m *Metrics) RecordPlugin(kind string, skipped bool) {
	if m == nil {
		return
	}
	if skipped {
		m.PluginsSkippedTotal.WithLabelValues(kind).Inc()
		return
	}
	m.PluginsResolvedTotal.WithLabelValues(kind).Inc()
}

// SetSourceFiles records the number of compilable files
func (m *Metrics) SetSourceFiles(n int) {
	if m == nil {
		return
	}
	m.SourceFiles.Set(float64(n))
}

// RecordCompilerExecution counts a compiler process
func (m *Metrics) RecordCompilerExecution(purpose string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.CompilerExecutionsTotal.WithLabelValues(purpose, outcome).Inc()
}

// WriteToFile writes the metrics in the text exposition format, suitable
// for the node_exporter textfile collector
func (m *Metrics) WriteToFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
