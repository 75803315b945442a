package message

import (
	"time"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/result"
	"github.com/voltdb/voltgo/wire"
)

// Presence-flag bits in the response header (spec §3).
const (
	flagStatusString    byte = 0x20
	flagException       byte = 0x40
	flagAppStatusString byte = 0x80
)

// Response is the decoded header of a procedure-call reply (spec §3).
type Response struct {
	CallID               uint64
	ServerStatus          int8
	ServerStatusString    string
	ApplicationStatus     int8
	ApplicationStatusString string
	ExecutionDurationMs   int32
	Exception             []byte
	Tables                []*result.Table
}

// ReadResponse parses a full response payload (everything after the frame
// header, spec §3 "Response payload"), including the leading 8-byte call id.
// The connection's read loop reads that call id first to claim the pending
// entry in the execution cache (spec §4.H) and calls ReadResponse only for
// replies it has claimed.
func ReadResponse(payload []byte) (*Response, error) {
	r := wire.NewReader(payload)

	callID, err := r.ReadUint64()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading call id").Err()
	}

	flags, err := r.ReadByte()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading presence flags").Err()
	}

	serverStatus, err := r.ReadInt8()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading server status").Err()
	}

	resp := &Response{CallID: callID, ServerStatus: serverStatus}

	if flags&flagStatusString != 0 {
		s, err := r.ReadString()
		if err != nil {
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading server status string").Err()
		}
		resp.ServerStatusString = s
	}

	appStatus, err := r.ReadInt8()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading application status").Err()
	}
	resp.ApplicationStatus = appStatus

	if flags&flagAppStatusString != 0 {
		s, err := r.ReadString()
		if err != nil {
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading application status string").Err()
		}
		resp.ApplicationStatusString = s
	}

	dur, err := r.ReadInt32()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading execution duration").Err()
	}
	resp.ExecutionDurationMs = dur

	if flags&flagException != 0 {
		n, err := r.ReadInt32()
		if err != nil {
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading exception length").Err()
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading exception bytes").Err()
		}
		resp.Exception = append([]byte(nil), b...)
	}

	tables, err := ReadTableArray(r)
	if err != nil {
		return nil, err
	}
	resp.Tables = tables

	return resp, nil
}

// ReadTableArray reads zero or more result tables until the reader is
// exhausted (the response body has no explicit table count; it is implied
// by consuming the remainder of the payload).
func ReadTableArray(r *wire.Reader) ([]*result.Table, error) {
	var tables []*result.Table
	for r.Len() > 0 {
		t, err := ReadTable(r)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ReadTable parses one result table (spec §3 "Result table").
func ReadTable(r *wire.Reader) (*result.Table, error) {
	totalLen, err := r.ReadInt32()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading table total length").Err()
	}
	_ = totalLen // informational; ReadTable trusts structured fields, not this redundant length.

	metaLen, err := r.ReadInt32()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading table metadata length").Err()
	}

	metaStart := r.Pos()

	if _, err := r.ReadByte(); err != nil { // custom status, unused by the core
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading table status").Err()
	}

	colCount, err := r.ReadUint16()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading column count").Err()
	}

	colTypes := make([]wire.Type, colCount)
	for i := range colTypes {
		tb, err := r.ReadInt8()
		if err != nil {
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading column type").Err()
		}
		colTypes[i] = wire.Type(tb)
	}

	// The remainder of the metadata section holds packed column names; keep
	// the raw slice and decode lazily (spec §4.E, §9 "Lazy column-name map").
	metaConsumed := r.Pos() - metaStart
	namesLen := int(metaLen) - metaConsumed
	if namesLen < 0 {
		return nil, verr.Newf(verr.CodeInvalidLength, "table metadata length too small: %d", metaLen).Err()
	}
	rawNames, err := r.ReadBytes(namesLen)
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading column names").Err()
	}

	rowCount, err := r.ReadInt32()
	if err != nil {
		return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading row count").Err()
	}
	if rowCount < 0 {
		return nil, verr.Newf(verr.CodeInvalidRowCount, "negative row count: %d", rowCount).Err()
	}

	t := result.NewTable(colTypes, append([]byte(nil), rawNames...), int(rowCount))

	for row := 0; row < int(rowCount); row++ {
		if _, err := r.ReadInt32(); err != nil { // row length, unused: columns are self-delimiting
			return nil, verr.Wrap(err, verr.CodeUnexpectedEOF, "reading row length").Err()
		}
		for col := 0; col < len(colTypes); col++ {
			if err := readCellInto(r, t, row, col, colTypes[col]); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func readCellInto(r *wire.Reader, t *result.Table, row, col int, typ wire.Type) error {
	switch typ {
	case wire.TypeTinyInt:
		v, err := r.ReadInt8()
		if err != nil {
			return err
		}
		t.SetTinyInt(row, col, v, v == wire.NullTinyInt)
	case wire.TypeSmallInt:
		v, err := r.ReadInt16()
		if err != nil {
			return err
		}
		t.SetSmallInt(row, col, v, v == wire.NullSmallInt)
	case wire.TypeInteger:
		v, err := r.ReadInt32()
		if err != nil {
			return err
		}
		t.SetInteger(row, col, v, v == wire.NullInteger)
	case wire.TypeBigInt:
		v, err := r.ReadInt64()
		if err != nil {
			return err
		}
		t.SetBigInt(row, col, v, v == wire.NullBigInt)
	case wire.TypeFloat:
		v, err := r.ReadFloat64()
		if err != nil {
			return err
		}
		t.SetFloat(row, col, v, wire.IsNullFloat(v))
	case wire.TypeTimestamp:
		v, err := r.ReadInt64()
		if err != nil {
			return err
		}
		if v == wire.NullTimestamp {
			t.SetTimestamp(row, col, time.Time{}, true)
		} else {
			t.SetTimestamp(row, col, time.UnixMicro(v).UTC(), false)
		}
	case wire.TypeDecimal:
		b, err := r.ReadBytes(wire.DecimalByteLen)
		if err != nil {
			return err
		}
		if wire.IsNullDecimal(b) {
			t.SetDecimalNull(row, col)
		} else {
			t.SetDecimal(row, col, wire.DecodeDecimal(b))
		}
	case wire.TypeString:
		n, err := r.ReadInt32()
		if err != nil {
			return err
		}
		if err := validateLength(n); err != nil {
			return err
		}
		if n == wire.NullLength {
			t.SetString(row, col, "", true)
			return nil
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return err
		}
		t.SetString(row, col, string(b), false)
	case wire.TypeVarbinary:
		n, err := r.ReadInt32()
		if err != nil {
			return err
		}
		if err := validateLength(n); err != nil {
			return err
		}
		if n == wire.NullLength {
			t.SetVarbinary(row, col, nil, true)
			return nil
		}
		b, err := r.ReadBytes(int(n))
		if err != nil {
			return err
		}
		t.SetVarbinary(row, col, append([]byte(nil), b...), false)
	default:
		return verr.Newf(verr.CodeInvalidCast, "unsupported column wire type %s", typ).Err()
	}
	return nil
}

func validateLength(n int32) error {
	if n == wire.NullLength {
		return nil
	}
	if n < 0 || n > MaxValueLength {
		return verr.Newf(verr.CodeInvalidLength, "invalid value length: %d", n).WithField("len", n).Err()
	}
	return nil
}
