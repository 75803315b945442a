package exec

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the executor's own counters to a caller-owned Prometheus
// registry. This is deliberately thin: the core only *exposes* gauges and
// counters, it never aggregates or exports them itself, keeping the
// excluded "statistics aggregation" product's job separate (spec.md §1).
type Metrics struct {
	queueDepth   prometheus.Gauge
	jobsRun      prometheus.Counter
	jobsPanicked prometheus.Counter
}

// NewMetrics builds and registers the executor's metrics under namespace
// with reg. Call SetMetrics to attach the result to a Pool.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "queue_depth",
			Help:      "Number of callback jobs enqueued but not yet run.",
		}),
		jobsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "jobs_run_total",
			Help:      "Total number of callback jobs executed.",
		}),
		jobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "jobs_panicked_total",
			Help:      "Total number of callback jobs that panicked and were suppressed.",
		}),
	}
	reg.MustRegister(m.queueDepth, m.jobsRun, m.jobsPanicked)
	return m
}

// SetMetrics attaches m to the pool. Safe to call before Start; not safe to
// change concurrently with Enqueue/Stop.
func (p *Pool) SetMetrics(m *Metrics) { p.metrics = m }
