// Component I: login protocol (credential exchange, cluster-identity
// decoding). Covered by spec.md §4.H's open() sequence and formalized here.
package conn

import (
	"crypto/sha1"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

// loginStatus is the first byte of the login response frame (spec §4.H.3).
type loginStatus int8

const (
	loginConnected          loginStatus = 0
	loginInvalidCredentials loginStatus = -1
	loginServerTooBusy      loginStatus = 1
	loginHandshakeTimeout   loginStatus = 2
	loginCorruptedHandshake loginStatus = 3
	loginUnknown            loginStatus = -128
)

// Identity is the cluster identity decoded from a successful login response
// (spec §4.H.4).
type Identity struct {
	HostID          int32
	ConnectionID    int64
	ClusterStarted  time.Time
	LeaderIP        net.IP
	BuildTag        string
	SessionUUID     uuid.UUID // client-assigned, not part of the wire payload
}

// login writes the login frame and parses the server's response, returning
// the decoded cluster Identity on success.
func login(stream *wire.Stream, svc ServiceType, userID, password string) (*Identity, error) {
	sum := sha1.Sum([]byte(password))

	w := wire.NewWriter()
	w.WriteString(string(svc))
	w.WriteString(userID)
	w.WriteBytes(sum[:])

	if err := stream.WriteFrame(w.Bytes()); err != nil {
		return nil, verr.Wrap(err, verr.CodeConnectionFailed, "writing login frame").Err()
	}

	payload, err := stream.ReadFrame()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeConnectionFailed, "reading login response").Err()
	}

	r := wire.NewReader(payload)
	statusByte, err := r.ReadInt8()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeCorruptedHandshake, "reading login status").Err()
	}

	switch loginStatus(statusByte) {
	case loginConnected:
		// fall through to identity parsing below
	case loginInvalidCredentials:
		return nil, verr.New(verr.CodeInvalidCredentials, "invalid credentials").Err()
	case loginServerTooBusy:
		return nil, verr.New(verr.CodeServerTooBusy, "server too busy").Err()
	case loginHandshakeTimeout:
		return nil, verr.New(verr.CodeHandshakeTimeout, "login handshake timed out").Err()
	case loginCorruptedHandshake:
		return nil, verr.New(verr.CodeCorruptedHandshake, "corrupted handshake").Err()
	case loginUnknown:
		return nil, verr.New(verr.CodeUnknownLoginStatus, "login status unknown").Err()
	default:
		return nil, verr.Newf(verr.CodeCorruptedHandshake, "unrecognized login status %d", statusByte).Err()
	}

	hostID, err := r.ReadInt32()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeParseLoginResponse, "reading host id").Err()
	}
	connID, err := r.ReadInt64()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeParseLoginResponse, "reading connection id").Err()
	}
	startMillis, err := r.ReadInt64()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeParseLoginResponse, "reading cluster start time").Err()
	}
	ipBytes, err := r.ReadBytes(4)
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeParseLoginResponse, "reading leader ip").Err()
	}
	buildTag, err := r.ReadString()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeParseLoginResponse, "reading build tag").Err()
	}

	return &Identity{
		HostID:         hostID,
		ConnectionID:   connID,
		ClusterStarted: time.UnixMilli(startMillis).UTC(),
		LeaderIP:       net.IPv4(ipBytes[0], ipBytes[1], ipBytes[2], ipBytes[3]),
		BuildTag:       buildTag,
		SessionUUID:    uuid.New(),
	}, nil
}
