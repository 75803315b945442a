package exec

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsCountJobsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "voltgo_test")

	p := New(1, nil)
	p.SetMetrics(m)
	p.Start()

	done := make(chan struct{})
	p.Enqueue(func() { close(done) })
	<-done
	p.Stop()

	var out dto.Metric
	m.jobsRun.Write(&out)
	if out.Counter.GetValue() != 1 {
		t.Fatalf("jobs_run_total = %v, want 1", out.Counter.GetValue())
	}
}

func TestMetricsCountJobsPanicked(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "voltgo_test")

	p := New(1, nil)
	p.SetMetrics(m)
	p.Start()

	done := make(chan struct{})
	p.Enqueue(func() { panic("boom") })
	p.Enqueue(func() { close(done) })
	<-done
	p.Stop()

	var out dto.Metric
	m.jobsPanicked.Write(&out)
	if out.Counter.GetValue() != 1 {
		t.Fatalf("jobs_panicked_total = %v, want 1", out.Counter.GetValue())
	}
}
