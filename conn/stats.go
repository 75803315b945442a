package conn

import "sync/atomic"

// Stats is a connection-local counter block (spec.md §9 supplemented
// features): the same kind of plain atomic bookkeeping the teacher keeps in
// its runtime package, not the excluded process-wide statistics-aggregation
// product.
type Stats struct {
	callsSubmitted atomic.Int64
	callsCompleted atomic.Int64
	callsTimedOut  atomic.Int64
	callsAborted   atomic.Int64
	bytesRead      atomic.Int64
	bytesWritten   atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats for callers to inspect.
type StatsSnapshot struct {
	CallsSubmitted int64
	CallsCompleted int64
	CallsTimedOut  int64
	CallsAborted   int64
	BytesRead      int64
	BytesWritten   int64
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		CallsSubmitted: s.callsSubmitted.Load(),
		CallsCompleted: s.callsCompleted.Load(),
		CallsTimedOut:  s.callsTimedOut.Load(),
		CallsAborted:   s.callsAborted.Load(),
		BytesRead:      s.bytesRead.Load(),
		BytesWritten:   s.bytesWritten.Load(),
	}
}
