package exec

import "golang.org/x/time/rate"

// SetRateLimit attaches an optional token-bucket limiter guarding Enqueue
// from a caller issuing bursts of submissions faster than callbacks can be
// drained. It is off unless SetRateLimit is called; conn.Settings.MaxSubmitRate
// is not applied to it automatically. Enqueue's
// non-blocking contract is preserved: once the bucket is empty, Enqueue
// returns false exactly as it would for a full queue.
func (p *Pool) SetRateLimit(eventsPerSecond float64, burst int) {
	if eventsPerSecond <= 0 {
		p.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	p.limiter = rate.NewLimiter(rate.Limit(eventsPerSecond), burst)
}
