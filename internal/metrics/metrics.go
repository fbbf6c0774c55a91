// Package metrics wraps the Prometheus collectors the orchestrator
// exposes: per-gate outcome counters, task duration, and hook retry
// counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the orchestrator updates during a run.
type Metrics struct {
	TasksCompleted  prometheus.Counter
	TasksFailed     prometheus.Counter
	GateRuns        *prometheus.CounterVec
	HookRetries     *prometheus.CounterVec
	TaskDuration    prometheus.Histogram
	BrainstormFlags prometheus.Counter
}

// New registers and returns a fresh Metrics against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_tasks_completed_total",
			Help: "Total number of tasks that reached DONE.",
		}),
		TasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_tasks_failed_total",
			Help: "Total number of tasks that reached FAILED.",
		}),
		GateRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weave_gate_runs_total",
			Help: "Gate runs by kind and outcome.",
		}, []string{"kind", "status"}),
		HookRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weave_hook_retries_total",
			Help: "Hook retry attempts by hook name.",
		}, []string{"hook"}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weave_task_duration_seconds",
			Help:    "Wall-clock time from task selection to DONE/FAILED.",
			Buckets: prometheus.DefBuckets,
		}),
		BrainstormFlags: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weave_brainstorm_flags_total",
			Help: "Total number of tasks flagged by a brainstorm risk check.",
		}),
	}

	reg.MustRegister(m.TasksCompleted, m.TasksFailed, m.GateRuns, m.HookRetries, m.TaskDuration, m.BrainstormFlags)
	return m
}

// RecordGateRun increments the gate-run counter for kind/status.
func (m *Metrics) RecordGateRun(kind, status string) {
	if m == nil {
		return
	}
	m.GateRuns.WithLabelValues(kind, status).Inc()
}

// RecordHookRetry increments the hook-retry counter for hookName.
func (m *Metrics) RecordHookRetry(hookName string) {
	if m == nil {
		return
	}
	m.HookRetries.WithLabelValues(hookName).Inc()
}
