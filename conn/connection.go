// Package conn implements component H, the node connection that ties the
// codec, framing, serialization, execution cache, and callback executor
// together: login, submit, the read loop, the timeout loop, and shutdown.
package conn

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voltdb/voltgo/callcache"
	"github.com/voltdb/voltgo/exec"
	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/internal/vlog"
	"github.com/voltdb/voltgo/message"
	"github.com/voltdb/voltgo/wire"
)

// State is the connection's lifecycle state (spec §4.H).
type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateConnected
	StateDraining
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDraining:
		return "draining"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Callback receives the decoded response of a submitted call, or a non-nil
// error for a server-reported failure, a local timeout, or an abort. Per
// spec.md §9, the connection passes only this minimal context — never a
// reference back to itself — so a callback can never create a shutdown
// deadlock by holding the connection alive.
type Callback func(resp *message.Response, err error)

const (
	timeoutIdleInterval   = 100 * time.Millisecond
	timeoutActiveInterval = 10 * time.Millisecond
)

// Connection is a single logged-in TCP connection to one server node.
type Connection struct {
	settings Settings
	logger   *vlog.Logger

	stream *wire.Stream
	cache  *callcache.Cache

	pool      *exec.Pool
	poolOwned bool

	stats Stats

	state      atomic.Int32
	nextCallID atomic.Uint64

	identity *Identity

	terminalErr atomic.Value // error

	stopCh chan struct{}

	terminateOnce sync.Once

	watcher *endpointWatcher
}

// New builds a Connection against settings. If pool is nil, a dedicated
// executor is created and owned by this connection (stopped on teardown);
// passing a shared pool across connections matches spec.md §9's "avoid a
// process-wide singleton; make a shared executor explicitly injected."
// logger may be nil.
func New(settings Settings, pool *exec.Pool, logger *vlog.Logger) *Connection {
	owned := false
	if pool == nil {
		pool = exec.New(0, logger)
		owned = true
	}
	c := &Connection{
		settings:  settings,
		logger:    logger,
		cache:     callcache.New(),
		pool:      pool,
		poolOwned: owned,
		stopCh:    make(chan struct{}),
	}
	c.state.Store(int32(StateClosed))
	return c
}

// Status reports the current lifecycle state.
func (c *Connection) Status() State { return State(c.state.Load()) }

// Identity returns the cluster identity decoded at login, or nil if the
// connection has never successfully opened.
func (c *Connection) Identity() *Identity { return c.identity }

// Stats returns a snapshot of connection-local counters.
func (c *Connection) Stats() StatsSnapshot { return c.stats.Snapshot() }

// Open dials the first configured endpoint, performs the login handshake,
// and starts the read loop, timeout loop, and callback executor (spec §4.H
// "open()"). Any failure leaves the connection in StateClosed.
func (c *Connection) Open(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateClosed), int32(StateConnecting)) {
		return verr.New(verr.CodeInternal, "open called while not closed").Err()
	}

	if len(c.settings.Endpoints) == 0 {
		c.state.Store(int32(StateClosed))
		return verr.New(verr.CodeConnectionFailed, "no endpoints configured").Err()
	}
	endpoint := c.settings.Endpoints[0]

	dialer := net.Dialer{Timeout: c.settings.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		c.state.Store(int32(StateClosed))
		return verr.Wrapf(err, verr.CodeConnectionFailed, "dialing %s", endpoint).
			WithField("endpoint", endpoint).Err()
	}
	if tcpConn, ok := rawConn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetNoDelay(true)
	}

	stream := wire.NewStream(rawConn)
	if c.settings.ConnectTimeout > 0 {
		_ = stream.SetReadDeadline(time.Now().Add(c.settings.ConnectTimeout))
	}

	identity, err := login(stream, c.settings.ServiceType, c.settings.UserID, c.settings.Password)
	if err != nil {
		_ = stream.Close()
		c.state.Store(int32(StateClosed))
		return verr.Wrapf(err, verr.CodeConnectionFailed, "login to %s failed", endpoint).
			WithField("endpoint", endpoint).Err()
	}
	_ = stream.SetReadDeadline(time.Time{}) // infinite for steady state

	c.stream = stream
	c.identity = identity

	if c.settings.EndpointsFile != "" {
		w, werr := newEndpointWatcher(c.settings.EndpointsFile, c.logger)
		if werr != nil {
			c.logger.System().Warn("endpoint file watch disabled", "error", werr.Error())
		} else {
			c.watcher = w
			c.watcher.start()
		}
	}

	c.pool.Start()
	c.state.Store(int32(StateConnected))

	go c.readLoop()
	go c.timeoutLoop()

	c.logger.System().Info("connection open", "endpoint", endpoint, "host_id", identity.HostID)
	return nil
}

// Submit encodes and writes a procedure call, registering a pending entry
// before the write so the reader can never observe a reply for an id not
// yet tracked (spec §5 ordering guarantee). The effective timeout is the
// larger of timeoutMs and the connection default (callcache.Deadline).
// timeoutMs of -1 means "use the connection default timeout"; if the
// connection default is also disabled, the call never expires on its own.
func (c *Connection) Submit(procedure string, params []interface{}, callback Callback, timeoutMs int64) (uint64, error) {
	if terr, _ := c.terminalErr.Load().(error); terr != nil {
		return 0, terr
	}
	if c.Status() != StateConnected {
		return 0, verr.New(verr.CodeClosed, "connection is not open").Err()
	}

	callID := c.nextCallID.Add(1)

	w := wire.NewWriter()
	if err := message.WriteCall(w, procedure, callID, params); err != nil {
		return 0, err
	}

	now := time.Now()
	connDefaultMs := int64(-1)
	if c.settings.DefaultCommandTimeout > 0 {
		connDefaultMs = c.settings.DefaultCommandTimeout.Milliseconds()
	}

	entry := &callcache.Entry{
		CallID:      callID,
		Procedure:   procedure,
		Deadline:    callcache.Deadline(now, timeoutMs, connDefaultMs),
		SubmittedAt: now,
	}
	entry.OnComplete = func(_ *callcache.Entry, respAny interface{}, err error) {
		c.pool.Enqueue(func() {
			resp, _ := respAny.(*message.Response)
			callback(resp, err)
		})
	}

	if err := c.cache.Insert(entry); err != nil {
		return 0, verr.Wrap(err, verr.CodeClosed, "connection is closing").Err()
	}

	if err := c.stream.WriteFrame(w.Bytes()); err != nil {
		c.cache.BeginRemove(callID) // undo: the write never reached the wire
		return 0, err
	}

	c.stats.callsSubmitted.Add(1)
	c.stats.bytesWritten.Add(int64(w.Len()))
	return callID, nil
}

// Drain refuses new submissions (by transitioning out of StateConnected)
// and waits for every pending call to reach a terminal transition before
// closing. If ctx is done first, Drain falls back to an abrupt close,
// aborting whatever is still outstanding.
func (c *Connection) Drain(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateConnected), int32(StateDraining)) {
		return verr.New(verr.CodeInternal, "drain called while not connected").Err()
	}
	c.logger.System().Info("connection draining")

	if err := c.cache.WaitEmpty(ctx); err != nil {
		c.terminate(verr.Wrap(err, verr.CodeAborted, "drain cancelled").Err(), true)
		return err
	}

	c.state.Store(int32(StateClosing))
	c.terminate(nil, false)
	return nil
}

// Close aborts every outstanding call immediately and tears down the
// connection. Safe to call multiple times and safe to call even if the
// connection never finished opening.
func (c *Connection) Close() error {
	c.state.Store(int32(StateClosing))
	c.terminate(verr.New(verr.CodeClosed, "connection closed by caller").Err(), true)
	return nil
}

// terminate is the single teardown path shared by the read loop's fatal
// I/O errors, Close(), and a cancelled Drain(). It is idempotent (spec
// §4.H "Terminate... must swallow cascaded I/O errors").
func (c *Connection) terminate(cause error, abortPending bool) {
	c.terminateOnce.Do(func() {
		c.state.Store(int32(StateClosed))

		if cause != nil {
			c.terminalErr.Store(cause)
		} else {
			c.terminalErr.Store(verr.New(verr.CodeClosed, "connection closed").Err())
		}

		close(c.stopCh)
		c.cache.Close()

		if c.stream != nil {
			_ = c.stream.Close()
		}
		if c.watcher != nil {
			c.watcher.stop()
		}

		if abortPending {
			for _, id := range c.cache.CurrentIDs() {
				entry, ok := c.cache.BeginRemove(id)
				if !ok {
					continue
				}
				c.stats.callsAborted.Add(1)
				entry.OnComplete(entry, nil, verr.New(verr.CodeAborted, "call aborted by connection teardown").Err())
			}
		}

		if c.poolOwned {
			c.pool.Stop()
		}

		c.logger.System().Info("connection terminated")
	})
}

// readLoop pulls frames, matches them to pending entries, and hands
// completions off to the callback executor. It never invokes a user
// callback directly (spec §3 invariant 3).
func (c *Connection) readLoop() {
	for {
		payload, err := c.stream.ReadFrame()
		if err != nil {
			select {
			case <-c.stopCh:
				return // intentional teardown; not a real failure
			default:
			}
			c.logger.IO().Warn("read loop terminal error", "error", err.Error())
			c.terminate(err, true)
			return
		}
		c.stats.bytesRead.Add(int64(len(payload)))

		// Claim the pending entry by call id before decoding the rest, so a
		// reply for an id that is no longer tracked is dropped unparsed.
		callID, err := wire.NewReader(payload).ReadUint64()
		if err != nil {
			err = verr.Wrap(err, verr.CodeUnexpectedEOF, "reading call id").Err()
			c.logger.IO().Warn("failed to read reply call id", "error", err.Error())
			c.terminate(err, true)
			return
		}
		entry, ok := c.cache.BeginRemove(callID)
		if !ok {
			continue // already timed out, cancelled, or shutting down
		}

		resp, err := message.ReadResponse(payload)
		if err != nil {
			c.logger.IO().Warn("failed to decode response", "error", err.Error())
			c.stats.callsAborted.Add(1)
			entry.OnComplete(entry, nil, err)
			c.terminate(err, true)
			return
		}
		c.stats.callsCompleted.Add(1)
		entry.OnComplete(entry, resp, translateServerStatus(resp))
	}
}

// timeoutLoop scans the execution cache for expired entries at a cadence
// that tightens while expiries are actively flowing (spec §4.H).
func (c *Connection) timeoutLoop() {
	interval := timeoutIdleInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			expired := c.cache.ExpiredIDs(time.Now())
			if len(expired) == 0 {
				if interval != timeoutIdleInterval {
					interval = timeoutIdleInterval
					ticker.Reset(interval)
				}
				continue
			}
			if interval != timeoutActiveInterval {
				interval = timeoutActiveInterval
				ticker.Reset(interval)
			}
			for _, id := range expired {
				entry, ok := c.cache.BeginRemove(id)
				if !ok {
					continue
				}
				c.stats.callsTimedOut.Add(1)
				entry.OnComplete(entry, nil, verr.New(verr.CodeTimedout, "call timed out").Err())
			}
		}
	}
}
