package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	if err := (<-ch).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordGateRunIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordGateRun("unit", "pass")
	m.RecordGateRun("unit", "pass")
	m.RecordGateRun("lint", "fail")

	if v := counterValue(t, m.GateRuns.WithLabelValues("unit", "pass")); v != 2 {
		t.Errorf("expected unit/pass = 2, got %v", v)
	}
	if v := counterValue(t, m.GateRuns.WithLabelValues("lint", "fail")); v != 1 {
		t.Errorf("expected lint/fail = 1, got %v", v)
	}
}

func TestRecordHookRetryIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordHookRetry("ai_review")
	if v := counterValue(t, m.HookRetries.WithLabelValues("ai_review")); v != 1 {
		t.Errorf("expected ai_review = 1, got %v", v)
	}
}

func TestRecordOnNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordGateRun("unit", "pass")
	m.RecordHookRetry("ai_review")
}
