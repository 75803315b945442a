package wire

import (
	"net"
	"testing"
	"time"

	"github.com/voltdb/voltgo/internal/verr"
)

func TestFrameRoundTrip(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	server := NewStream(serverConn)
	client := NewStream(clientConn)

	payload := []byte("hello, voltgo")

	errCh := make(chan error, 1)
	go func() { errCh <- server.WriteFrame(payload) }()

	got, err := client.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestFrameVersionMismatch(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		// hand-roll a frame with a bad version byte
		hdr := []byte{0, 0, 0, 2, 1, 0xAB}
		serverConn.Write(hdr)
	}()

	client := NewStream(clientConn)
	_, err := client.ReadFrame()
	if err == nil {
		t.Fatal("expected version mismatch error")
	}
	if verr.GetCode(err) != verr.CodeVersionMismatch {
		t.Fatalf("got code %v, want CodeVersionMismatch", verr.GetCode(err))
	}
}

func TestFrameOversizePayloadRejected(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go func() {
		var hdr [5]byte
		// length field says payload is 1 over the max, version byte is valid
		n := uint32(MaxPayloadLen) + 2
		hdr[0] = byte(n >> 24)
		hdr[1] = byte(n >> 16)
		hdr[2] = byte(n >> 8)
		hdr[3] = byte(n)
		hdr[4] = ProtocolVersion
		serverConn.Write(hdr[:])
	}()

	client := NewStream(clientConn)
	_, err := client.ReadFrame()
	if err == nil || verr.GetCode(err) != verr.CodeLengthInvalid {
		t.Fatalf("got %v, want CodeLengthInvalid", err)
	}
}

func TestReadFrameTimeout(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	client := NewStream(clientConn)
	client.SetReadDeadline(time.Now().Add(20 * time.Millisecond))

	_, err := client.ReadFrame()
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
