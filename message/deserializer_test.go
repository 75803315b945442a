package message

import (
	"testing"
	"time"

	"github.com/voltdb/voltgo/wire"
)

// buildTablePayload writes one result table with a single INTEGER column
// named "VAL" holding the rows given, in the on-wire layout ReadTable expects.
func buildTablePayload(w *wire.Writer, rows []int32) {
	body := wire.NewWriter()

	meta := wire.NewWriter()
	meta.WriteByte(0) // custom status, unused
	meta.WriteUint16(1)
	meta.WriteInt8(int8(wire.TypeInteger))
	meta.WriteString("VAL") // packed column name

	body.WriteInt32(int32(meta.Len()))
	body.WriteBytes(meta.Bytes())

	body.WriteInt32(int32(len(rows)))
	for _, v := range rows {
		row := wire.NewWriter()
		row.WriteInt32(v)
		body.WriteInt32(int32(row.Len()))
		body.WriteBytes(row.Bytes())
	}

	w.WriteInt32(int32(body.Len()))
	w.WriteBytes(body.Bytes())
}

func TestReadResponseSimpleIntegerProcedure(t *testing.T) {
	w := wire.NewWriter()
	w.WriteUint64(100) // call id
	w.WriteByte(0)     // presence flags: no strings, no exception
	w.WriteInt8(1)     // server status: success
	w.WriteInt8(0)     // application status
	w.WriteInt32(3)    // execution duration ms
	buildTablePayload(w, []int32{1})

	resp, err := ReadResponse(w.Bytes())
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if resp.CallID != 100 {
		t.Fatalf("call id = %d, want 100", resp.CallID)
	}
	if resp.ServerStatus != 1 {
		t.Fatalf("server status = %d, want 1", resp.ServerStatus)
	}
	if resp.ExecutionDurationMs != 3 {
		t.Fatalf("duration = %d, want 3", resp.ExecutionDurationMs)
	}
	if len(resp.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(resp.Tables))
	}
	table := resp.Tables[0]
	if table.RowCount() != 1 || table.ColumnCount() != 1 {
		t.Fatalf("table shape = %dx%d, want 1x1", table.RowCount(), table.ColumnCount())
	}
	v, isNull, err := table.GetInteger(0, 0)
	if err != nil || isNull || v != 1 {
		t.Fatalf("GetInteger = %d, null=%v, err=%v", v, isNull, err)
	}
	name, err := table.ColumnName(0)
	if err != nil || name != "VAL" {
		t.Fatalf("ColumnName = %q, %v", name, err)
	}
}

func TestReadResponseStatusStringsAndException(t *testing.T) {
	w := wire.NewWriter()
	w.WriteUint64(7)
	w.WriteByte(flagStatusString | flagAppStatusString | flagException)
	w.WriteInt8(-2) // graceful failure
	w.WriteString("graceful failure occurred")
	w.WriteInt8(5)
	w.WriteString("app-specific note")
	w.WriteInt32(12)
	w.WriteInt32(4)
	w.WriteBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	// no tables follow; reader is exhausted.

	resp, err := ReadResponse(w.Bytes())
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if resp.ServerStatusString != "graceful failure occurred" {
		t.Fatalf("server status string = %q", resp.ServerStatusString)
	}
	if resp.ApplicationStatusString != "app-specific note" {
		t.Fatalf("app status string = %q", resp.ApplicationStatusString)
	}
	if len(resp.Exception) != 4 {
		t.Fatalf("exception bytes = %v", resp.Exception)
	}
	if len(resp.Tables) != 0 {
		t.Fatalf("expected no tables, got %d", len(resp.Tables))
	}
}

func TestReadResponseNullTimestampColumn(t *testing.T) {
	body := wire.NewWriter()
	meta := wire.NewWriter()
	meta.WriteByte(0)
	meta.WriteUint16(1)
	meta.WriteInt8(int8(wire.TypeTimestamp))
	meta.WriteString("TS")
	body.WriteInt32(int32(meta.Len()))
	body.WriteBytes(meta.Bytes())
	body.WriteInt32(1)
	row := wire.NewWriter()
	row.WriteInt64(wire.NullBigInt)
	body.WriteInt32(int32(row.Len()))
	body.WriteBytes(row.Bytes())

	w := wire.NewWriter()
	w.WriteUint64(1)
	w.WriteByte(0)
	w.WriteInt8(1)
	w.WriteInt8(0)
	w.WriteInt32(1)
	w.WriteInt32(int32(body.Len()))
	w.WriteBytes(body.Bytes())

	resp, err := ReadResponse(w.Bytes())
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	table := resp.Tables[0]
	_, isNull, err := table.GetTimestamp(0, 0)
	if err != nil || !isNull {
		t.Fatalf("expected null timestamp, got null=%v err=%v", isNull, err)
	}
}

func TestWriteCallMixedParameters(t *testing.T) {
	callW := wire.NewWriter()
	if err := WriteCall(callW, "Echo", 42, []interface{}{int32(9), "hello", time.Now()}); err != nil {
		t.Fatalf("WriteCall: %v", err)
	}
	if callW.Len() == 0 {
		t.Fatal("expected non-empty call payload")
	}
}
