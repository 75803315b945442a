package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/voltdb/voltgo/internal/verr"
)

// ProtocolVersion is the single fixed version byte each frame carries.
// Any other value on the wire is fatal (spec §3, §4.I).
const ProtocolVersion byte = 0

// MaxPayloadLen is the largest payload a frame may carry (spec §3).
const MaxPayloadLen = 20 * 1024 * 1024

// headerLen is the length prefix (4 bytes) plus the version byte (1 byte).
const headerLen = 5

// readBufSize and writeBufSize follow spec §4.B: a large read buffer, a
// modest write buffer.
const (
	readBufSize  = 256 * 1024
	writeBufSize = 16 * 1024
)

// ErrWouldBlockRetries bounds how many times a transient "would block" error
// is retried before it propagates (spec §4.B). The retry loop only runs when
// Stream.RetryOnWouldBlock is set, which it is not by default: it is a legacy
// workaround for an old platform quirk (spec §9 Open Question 3) that modern
// stacks do not need.
const ErrWouldBlockRetries = 2

// Stream wraps a duplex byte connection with VoltDB's length-prefixed,
// version-tagged frame boundary (spec §4.B). Reads are never called
// concurrently with other reads; writes are serialized internally so
// multiple goroutines may call WriteFrame concurrently.
type Stream struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	writeMu sync.Mutex

	// RetryOnWouldBlock re-enables the legacy would-block retry workaround
	// (spec §9 Open Question 3). Off by default.
	RetryOnWouldBlock bool
}

// NewStream wraps conn for frame-level I/O.
func NewStream(conn net.Conn) *Stream {
	return &Stream{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, readBufSize),
		writer: bufio.NewWriterSize(conn, writeBufSize),
	}
}

// Conn returns the underlying net.Conn.
func (s *Stream) Conn() net.Conn { return s.conn }

// ReadFrame blocks until one complete frame is available and returns its
// payload (the 5-byte header is consumed but not returned). The returned
// slice is freshly allocated and safe to retain.
func (s *Stream) ReadFrame() ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(s.reader, hdr[:]); err != nil {
		return nil, s.classifyReadErr(err)
	}

	totalLen := binary.BigEndian.Uint32(hdr[0:4])
	version := hdr[4]

	if version != ProtocolVersion {
		return nil, verr.Newf(verr.CodeVersionMismatch,
			"frame version mismatch: got %d, expected %d", version, ProtocolVersion).
			WithField("got", version).WithField("expected", ProtocolVersion).Err()
	}

	if totalLen == 0 {
		return nil, verr.New(verr.CodeLengthInvalid, "frame length missing version byte").Err()
	}
	payloadLen := totalLen - 1
	if payloadLen > MaxPayloadLen {
		return nil, verr.Newf(verr.CodeLengthInvalid, "frame payload too large: %d > %d", payloadLen, MaxPayloadLen).
			WithField("len", payloadLen).WithField("max", MaxPayloadLen).Err()
	}

	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(s.reader, payload); err != nil {
			return nil, s.classifyReadErr(err)
		}
	}
	return payload, nil
}

func (s *Stream) classifyReadErr(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return verr.Wrap(err, verr.CodeTerminalIO, "frame read timeout").Err()
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return verr.Wrap(err, verr.CodeUnexpectedEOF, "unexpected EOF reading frame").Err()
	}
	return verr.Wrap(err, verr.CodeTerminalIO, "frame read failed").Err()
}

// WriteFrame writes one complete frame (header + payload) and flushes so the
// peer is never starved waiting on a buffered partial write. Safe for
// concurrent use; writes from different goroutines are serialized so frames
// on the wire are whole and ordered (spec §4.B, §5).
func (s *Stream) WriteFrame(payload []byte) error {
	if len(payload) > MaxPayloadLen {
		return verr.Newf(verr.CodeLengthInvalid, "frame payload too large: %d > %d", len(payload), MaxPayloadLen).
			WithField("len", len(payload)).WithField("max", MaxPayloadLen).Err()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var hdr [headerLen]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(payload)+1))
	hdr[4] = ProtocolVersion

	retries := 0
	for {
		if _, err := s.writer.Write(hdr[:]); err != nil {
			if s.shouldRetry(err, &retries) {
				continue
			}
			return verr.Wrap(err, verr.CodeTerminalIO, "frame header write failed").Err()
		}
		break
	}

	retries = 0
	for {
		if len(payload) > 0 {
			if _, err := s.writer.Write(payload); err != nil {
				if s.shouldRetry(err, &retries) {
					continue
				}
				return verr.Wrap(err, verr.CodeTerminalIO, "frame payload write failed").Err()
			}
		}
		break
	}

	if err := s.writer.Flush(); err != nil {
		return verr.Wrap(err, verr.CodeTerminalIO, "frame flush failed").Err()
	}
	return nil
}

// shouldRetry implements the bounded would-block retry policy of spec §4.B /
// §9 Open Question 3. It is a no-op unless RetryOnWouldBlock is set.
func (s *Stream) shouldRetry(err error, retries *int) bool {
	if !s.RetryOnWouldBlock {
		return false
	}
	var ne net.Error
	if !errors.As(err, &ne) || ne.Timeout() {
		return false
	}
	if *retries >= ErrWouldBlockRetries {
		return false
	}
	*retries++
	return true
}

// SetReadDeadline sets (or clears, with the zero time) the read deadline on
// the underlying connection.
func (s *Stream) SetReadDeadline(t time.Time) error { return s.conn.SetReadDeadline(t) }

// Close closes the underlying connection.
func (s *Stream) Close() error { return s.conn.Close() }
