package result

import (
	"testing"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

func TestNewSingleRowTableRejectsMultipleRows(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("ID"), 2)
	_, err := NewSingleRowTable(tbl)
	if err == nil || verr.GetCode(err) != verr.CodeInvalidRowCount {
		t.Fatalf("expected CodeInvalidRowCount, got %v", err)
	}
}

func TestSingleRowTableEmpty(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("ID"), 0)
	srt, err := NewSingleRowTable(tbl)
	if err != nil {
		t.Fatalf("NewSingleRowTable: %v", err)
	}
	if !srt.Empty() {
		t.Fatal("expected empty")
	}
	v, isNull, err := srt.Integer(0)
	if err != nil || !isNull || v != 0 {
		t.Fatalf("Integer on empty = %d null=%v err=%v", v, isNull, err)
	}
}

func TestSingleRowTableAccessors(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeBigInt, wire.TypeString}, packNames("N", "S"), 1)
	tbl.SetBigInt(0, 0, 99, false)
	tbl.SetString(0, 1, "hi", false)
	srt, err := NewSingleRowTable(tbl)
	if err != nil {
		t.Fatalf("NewSingleRowTable: %v", err)
	}
	if v, isNull, err := srt.BigInt(0); err != nil || isNull || v != 99 {
		t.Fatalf("BigInt = %d null=%v err=%v", v, isNull, err)
	}
	if v, isNull, err := srt.String(1); err != nil || isNull || v != "hi" {
		t.Fatalf("String = %q null=%v err=%v", v, isNull, err)
	}
	if _, _, err := srt.BigInt(1); err == nil {
		t.Fatal("expected type mismatch error for column 1 as BigInt")
	}
}

func TestSingleValueIntegerValidation(t *testing.T) {
	multiCol := NewTable([]wire.Type{wire.TypeInteger, wire.TypeInteger}, packNames("A", "B"), 1)
	multiCol.SetInteger(0, 0, 1, false)
	multiCol.SetInteger(0, 1, 2, false)
	if _, _, err := SingleValueInteger(multiCol); err == nil {
		t.Fatal("expected error for multi-column table")
	}

	multiRow := NewTable([]wire.Type{wire.TypeInteger}, packNames("A"), 2)
	multiRow.SetInteger(0, 0, 1, false)
	multiRow.SetInteger(1, 0, 2, false)
	if _, _, err := SingleValueInteger(multiRow); err == nil || verr.GetCode(err) != verr.CodeInvalidRowCount {
		t.Fatalf("expected CodeInvalidRowCount for multi-row table, got %v", err)
	}

	ok := NewTable([]wire.Type{wire.TypeInteger}, packNames("A"), 1)
	ok.SetInteger(0, 0, 7, false)
	v, isNull, err := SingleValueInteger(ok)
	if err != nil || isNull || v != 7 {
		t.Fatalf("SingleValueInteger = %d null=%v err=%v", v, isNull, err)
	}
}

func TestSingleColumnIntegers(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("A"), 3)
	tbl.SetInteger(0, 0, 1, false)
	tbl.SetInteger(1, 0, 0, true)
	tbl.SetInteger(2, 0, 3, false)

	vals, nulls, err := SingleColumnIntegers(tbl)
	if err != nil {
		t.Fatalf("SingleColumnIntegers: %v", err)
	}
	if len(vals) != 3 || vals[0] != 1 || vals[2] != 3 {
		t.Fatalf("vals = %v", vals)
	}
	if !nulls[1] || nulls[0] || nulls[2] {
		t.Fatalf("nulls = %v", nulls)
	}
}

func TestSingleColumnStringsWrongType(t *testing.T) {
	tbl := NewTable([]wire.Type{wire.TypeInteger}, packNames("A"), 1)
	tbl.SetInteger(0, 0, 1, false)
	if _, _, err := SingleColumnStrings(tbl); err == nil {
		t.Fatal("expected type-mismatch error")
	}
}
