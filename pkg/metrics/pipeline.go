package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records cleaning-run and simulation outcomes.
type PipelineMetrics struct {
	cleanDuration *prometheus.HistogramVec
	rowsIn        *prometheus.CounterVec
	rowsDropped   *prometheus.CounterVec
	issues        *prometheus.CounterVec
	simulations   *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided
// registerer. A nil registerer yields a no-op recorder, which keeps the
// pipeline callable from tests and the CLI without a registry.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	cleanDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cleaning_run_duration_seconds",
		Help:    "Duration of full cleaning runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	rowsIn := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cleaning_rows_in_total",
		Help: "Rows received per table across cleaning runs.",
	}, []string{"table"})
	rowsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cleaning_rows_dropped_total",
		Help: "Rows rejected per table across cleaning runs.",
	}, []string{"table"})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cleaning_issues_total",
		Help: "Remediation actions taken, labeled by issue type.",
	}, []string{"issue_type"})
	simulations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_simulations_total",
		Help: "Campaign simulations run, labeled by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(cleanDuration, rowsIn, rowsDropped, issues, simulations)
	return &PipelineMetrics{
		cleanDuration: cleanDuration,
		rowsIn:        rowsIn,
		rowsDropped:   rowsDropped,
		issues:        issues,
		simulations:   simulations,
	}
}

// ObserveCleanDuration records the duration of a cleaning run.
func (p *PipelineMetrics) ObserveCleanDuration(outcome string, duration time.Duration) {
	if p == nil || p.cleanDuration == nil {
		return
	}
	p.cleanDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddRowsIn adds to the per-table input row counter.
func (p *PipelineMetrics) AddRowsIn(tableName string, n int) {
	if p == nil || p.rowsIn == nil || n <= 0 {
		return
	}
	p.rowsIn.WithLabelValues(normalizeLabel(tableName)).Add(float64(n))
}

// AddRowsDropped adds to the per-table rejected row counter.
func (p *PipelineMetrics) AddRowsDropped(tableName string, n int) {
	if p == nil || p.rowsDropped == nil || n <= 0 {
		return
	}
	p.rowsDropped.WithLabelValues(normalizeLabel(tableName)).Add(float64(n))
}

// AddIssues adds to the per-issue-type remediation counter.
func (p *PipelineMetrics) AddIssues(issueType string, n int) {
	if p == nil || p.issues == nil || n <= 0 {
		return
	}
	p.issues.WithLabelValues(normalizeLabel(issueType)).Add(float64(n))
}

// IncSimulation counts a simulation call by outcome.
func (p *PipelineMetrics) IncSimulation(outcome string) {
	if p == nil || p.simulations == nil {
		return
	}
	p.simulations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
