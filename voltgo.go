// Package voltgo is the wire-protocol core of an asynchronous,
// callback-driven stored-procedure client: codec, framing, serialization,
// execution cache, callback executor, and node connection. Connection
// pooling, a typed procedure-wrapper façade, and statistics aggregation are
// deliberately out of scope — build them on top of a Connection.
package voltgo

import (
	"context"

	"github.com/voltdb/voltgo/conn"
	"github.com/voltdb/voltgo/exec"
	"github.com/voltdb/voltgo/internal/vlog"
)

// Settings and ServiceType are defined in package conn; re-exported here so
// callers of the top-level package never need to import conn directly.
type (
	Settings    = conn.Settings
	ServiceType = conn.ServiceType
	Connection  = conn.Connection
	Callback    = conn.Callback
	State       = conn.State
)

const (
	ServiceDatabase = conn.ServiceDatabase
	ServiceExport   = conn.ServiceExport
)

const (
	StateClosed     = conn.StateClosed
	StateConnecting = conn.StateConnecting
	StateConnected  = conn.StateConnected
	StateDraining   = conn.StateDraining
	StateClosing    = conn.StateClosing
)

// DefaultSettings returns the baseline Settings every field of which a
// caller is expected to override at least Endpoints/UserID/Password for.
func DefaultSettings() Settings { return conn.DefaultSettings() }

// Connect builds and opens a Connection against settings, sharing pool if
// given (nil creates a dedicated one) and logging through logger (nil
// discards). It returns once login has completed or failed.
func Connect(ctx context.Context, settings Settings, pool *exec.Pool, logger *vlog.Logger) (*Connection, error) {
	c := conn.New(settings, pool, logger)
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
