// Package exec implements the bounded callback-executor worker pool
// (component G): it runs user completion callbacks off the connection's I/O
// path so a slow or misbehaving callback can never stall the reader or
// timeout loop.
package exec

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/voltdb/voltgo/internal/vlog"
)

// queueCapacity bounds how many pending jobs Enqueue will buffer before it
// starts refusing work; callers treat a false return as backpressure.
const queueCapacity = 4096

// Job is a unit of callback work: a single decoded terminal transition
// (reply, timeout, or abort) ready to be handed to a user callback.
type Job func()

// Pool is a fixed-size worker pool shared, by design, across every
// connection that opts into a common executor (spec §4.G, §9 "avoid a
// process-wide singleton; if a shared callback executor is desired, make it
// explicitly injected").
type Pool struct {
	size int
	jobs chan Job

	mu      sync.Mutex
	cond    *sync.Cond
	pending int

	startMu sync.Mutex
	started bool
	stopped atomic.Bool

	wg sync.WaitGroup

	totalRun   atomic.Int64
	totalPanic atomic.Int64

	logger  *vlog.Logger
	metrics *Metrics
	limiter *rate.Limiter
}

// DefaultSize returns max(NumCPU-3, 2): enough workers to run callbacks
// without starving the reader thread, the timeout thread, and the caller's
// own goroutines (spec §4.G rationale).
func DefaultSize() int {
	n := runtime.NumCPU() - 3
	if n < 2 {
		n = 2
	}
	return n
}

// New builds a Pool with the given worker count (DefaultSize() if size <= 0).
// logger may be nil.
func New(size int, logger *vlog.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	p := &Pool{size: size, jobs: make(chan Job, queueCapacity), logger: logger}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start spins up the worker goroutines. It is idempotent: calling it again,
// including from a second connection sharing this pool, is a no-op.
func (p *Pool) Start() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.started {
		return
	}
	p.started = true
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Enqueue submits job for execution. It never blocks: if the queue is full
// or the pool has been stopped, it returns false immediately.
func (p *Pool) Enqueue(job Job) bool {
	if p.limiter != nil && !p.limiter.Allow() {
		return false
	}
	// The stopped check and the pending increment happen under the same
	// lock Stop uses to guard its drain-then-close sequence: Stop can only
	// close p.jobs once it observes pending==0, and pending stays above
	// zero from here until the job has either been rejected below or run
	// to completion, so Stop can never close the channel while a send is
	// in flight.
	p.mu.Lock()
	if p.stopped.Load() {
		p.mu.Unlock()
		return false
	}
	p.pending++
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		if p.metrics != nil {
			p.metrics.queueDepth.Inc()
		}
		return true
	default:
		p.mu.Lock()
		p.pending--
		p.cond.Signal()
		p.mu.Unlock()
		return false
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.runJob(job)
	}
}

func (p *Pool) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.totalPanic.Add(1)
			if p.metrics != nil {
				p.metrics.jobsPanicked.Inc()
			}
			if p.logger != nil {
				p.logger.Execution().Error("callback panicked, suppressing", fmt.Errorf("%v", r))
			}
		}
		p.totalRun.Add(1)
		if p.metrics != nil {
			p.metrics.jobsRun.Inc()
			p.metrics.queueDepth.Dec()
		}
		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
		p.mu.Unlock()
	}()
	job()
}

// Stop waits for the queue to drain (spec §9: a condition variable signaled
// on the drained transition, not a polled queue-length check) and then
// signals every worker to exit. It blocks until all workers have returned.
// Stop is idempotent; Enqueue after Stop always returns false.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped.CompareAndSwap(false, true) {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
	close(p.jobs)
	p.wg.Wait()
}

// Stats reports cumulative counters for diagnostics.
type Stats struct {
	Size        int
	TotalRun    int64
	TotalPanics int64
}

// Stats returns a snapshot of cumulative pool activity.
func (p *Pool) Stats() Stats {
	return Stats{
		Size:        p.size,
		TotalRun:    p.totalRun.Load(),
		TotalPanics: p.totalPanic.Load(),
	}
}
