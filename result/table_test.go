package result

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

func packNames(names ...string) []byte {
	w := wire.NewWriter()
	for _, n := range names {
		w.WriteString(n)
	}
	return w.Bytes()
}

func TestTableGetSetRoundTrip(t *testing.T) {
	colTypes := []wire.Type{wire.TypeInteger, wire.TypeString, wire.TypeDecimal}
	tbl := NewTable(colTypes, packNames("ID", "NAME", "AMOUNT"), 2)

	tbl.SetInteger(0, 0, 42, false)
	tbl.SetInteger(1, 0, 0, true)
	tbl.SetString(0, 1, "alice", false)
	tbl.SetString(1, 1, "", true)
	amt := decimal.RequireFromString("12.50")
	tbl.SetDecimal(0, 2, amt)
	tbl.SetDecimalNull(1, 2)

	if got, null, err := tbl.GetInteger(0, 0); err != nil || null || got != 42 {
		t.Fatalf("row0 id = %d null=%v err=%v", got, null, err)
	}
	if _, null, err := tbl.GetInteger(1, 0); err != nil || !null {
		t.Fatalf("row1 id should be null, got null=%v err=%v", null, err)
	}
	if got, null, err := tbl.GetString(0, 1); err != nil || null || got != "alice" {
		t.Fatalf("row0 name = %q null=%v err=%v", got, null, err)
	}
	if got, null, err := tbl.GetDecimal(0, 2); err != nil || null || !got.Equal(amt) {
		t.Fatalf("row0 amount = %s null=%v err=%v", got, null, err)
	}
	if _, null, err := tbl.GetDecimal(1, 2); err != nil || !null {
		t.Fatalf("row1 amount should be null, got null=%v err=%v", null, err)
	}

	names, err := tbl.ColumnNames()
	if err != nil || len(names) != 3 || names[0] != "ID" || names[2] != "AMOUNT" {
		t.Fatalf("ColumnNames = %v, %v", names, err)
	}
}

func TestTableGetWrongTypeErrors(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("ID"), 1)
	tbl.SetInteger(0, 0, 1, false)

	_, _, err := tbl.GetString(0, 0)
	if err == nil || verr.GetCode(err) != verr.CodeInvalidCast {
		t.Fatalf("expected CodeInvalidCast, got %v", err)
	}
}

func TestTableOutOfRangeErrors(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("ID"), 1)
	tbl.SetInteger(0, 0, 1, false)

	if _, _, err := tbl.GetInteger(5, 0); err == nil {
		t.Fatal("expected out-of-range row error")
	}
	if _, _, err := tbl.GetInteger(0, 5); err == nil {
		t.Fatal("expected out-of-range column error")
	}
}

func TestTableTimestampAndVarbinary(t *testing.T) {
	colTypes := []wire.Type{wire.TypeTimestamp, wire.TypeVarbinary}
	tbl := NewTable(colTypes, packNames("TS", "BLOB"), 1)

	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl.SetTimestamp(0, 0, ts, false)
	tbl.SetVarbinary(0, 1, []byte{1, 2, 3}, false)

	gotTS, null, err := tbl.GetTimestamp(0, 0)
	if err != nil || null || !gotTS.Equal(ts) {
		t.Fatalf("timestamp = %v null=%v err=%v", gotTS, null, err)
	}
	gotBlob, null, err := tbl.GetVarbinary(0, 1)
	if err != nil || null || string(gotBlob) != "\x01\x02\x03" {
		t.Fatalf("varbinary = %v null=%v err=%v", gotBlob, null, err)
	}
}
