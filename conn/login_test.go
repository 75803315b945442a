package conn

import (
	"net"
	"testing"
	"time"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

func TestLoginSuccess(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		server := wire.NewStream(serverConn)
		server.ReadFrame() // drain the login request

		w := wire.NewWriter()
		w.WriteInt8(0) // loginConnected
		w.WriteInt32(7)
		w.WriteInt64(999)
		w.WriteInt64(time.Now().UnixMilli())
		w.WriteBytes([]byte{10, 0, 0, 1})
		w.WriteString("v1.2.3")
		server.WriteFrame(w.Bytes())
	}()

	client := wire.NewStream(clientConn)
	identity, err := login(client, ServiceDatabase, "user", "pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity.HostID != 7 || identity.ConnectionID != 999 {
		t.Fatalf("identity = %+v", identity)
	}
	if identity.BuildTag != "v1.2.3" {
		t.Fatalf("BuildTag = %q", identity.BuildTag)
	}
	if identity.LeaderIP.String() != "10.0.0.1" {
		t.Fatalf("LeaderIP = %v", identity.LeaderIP)
	}
	if identity.SessionUUID.String() == "" {
		t.Fatal("expected a non-empty SessionUUID")
	}
}

func testLoginStatusFailure(t *testing.T, status int8, wantCode verr.Code) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		server := wire.NewStream(serverConn)
		server.ReadFrame()
		w := wire.NewWriter()
		w.WriteInt8(status)
		server.WriteFrame(w.Bytes())
	}()

	client := wire.NewStream(clientConn)
	_, err := login(client, ServiceDatabase, "user", "pass")
	if err == nil {
		t.Fatal("expected login error")
	}
	if verr.GetCode(err) != wantCode {
		t.Fatalf("got code %v, want %v", verr.GetCode(err), wantCode)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	testLoginStatusFailure(t, -1, verr.CodeInvalidCredentials)
}

func TestLoginServerTooBusy(t *testing.T) {
	testLoginStatusFailure(t, 1, verr.CodeServerTooBusy)
}

func TestLoginHandshakeTimeout(t *testing.T) {
	testLoginStatusFailure(t, 2, verr.CodeHandshakeTimeout)
}

func TestLoginCorruptedHandshake(t *testing.T) {
	testLoginStatusFailure(t, 3, verr.CodeCorruptedHandshake)
}

func TestLoginUnknownStatus(t *testing.T) {
	testLoginStatusFailure(t, -128, verr.CodeUnknownLoginStatus)
}

func TestLoginUnrecognizedStatus(t *testing.T) {
	testLoginStatusFailure(t, 99, verr.CodeCorruptedHandshake)
}
