package result

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

// SingleRowTable wraps a Table known to carry at most one row, the shape a
// single-row stored procedure result takes (spec §4.E). Construction rejects
// anything with more than one row; zero rows is valid and every accessor
// reports null.
type SingleRowTable struct {
	*Table
}

// NewSingleRowTable validates t has at most one row and wraps it.
func NewSingleRowTable(t *Table) (*SingleRowTable, error) {
	if t.RowCount() > 1 {
		return nil, verr.Newf(verr.CodeInvalidRowCount, "expected at most one row, got %d", t.RowCount()).Err()
	}
	return &SingleRowTable{Table: t}, nil
}

// Empty reports whether the table carried zero rows.
func (s *SingleRowTable) Empty() bool { return s.RowCount() == 0 }

func (s *SingleRowTable) validateColumn(col int, want wire.Type) error {
	if col < 0 || col >= s.ColumnCount() {
		return verr.Newf(verr.CodeInvalidCast, "column index out of range: %d", col).Err()
	}
	if s.ColumnType(col) != want {
		return verr.Newf(verr.CodeInvalidCast, "column %d is %s, not %s", col, s.ColumnType(col), want).Err()
	}
	return nil
}

// Integer returns column col of the single row as an INTEGER, or null/error
// if the table is empty, the column index is out of range, or the column's
// wire type does not match.
func (s *SingleRowTable) Integer(col int) (int32, bool, error) {
	if err := s.validateColumn(col, wire.TypeInteger); err != nil {
		return 0, false, err
	}
	if s.Empty() {
		return 0, true, nil
	}
	return s.GetInteger(0, col)
}

// BigInt returns column col of the single row as a BIGINT.
func (s *SingleRowTable) BigInt(col int) (int64, bool, error) {
	if err := s.validateColumn(col, wire.TypeBigInt); err != nil {
		return 0, false, err
	}
	if s.Empty() {
		return 0, true, nil
	}
	return s.GetBigInt(0, col)
}

// String returns column col of the single row as a STRING.
func (s *SingleRowTable) String(col int) (string, bool, error) {
	if err := s.validateColumn(col, wire.TypeString); err != nil {
		return "", false, err
	}
	if s.Empty() {
		return "", true, nil
	}
	return s.GetString(0, col)
}

// Decimal returns column col of the single row as a DECIMAL.
func (s *SingleRowTable) Decimal(col int) (decimal.Decimal, bool, error) {
	if err := s.validateColumn(col, wire.TypeDecimal); err != nil {
		return decimal.Decimal{}, false, err
	}
	if s.Empty() {
		return decimal.Decimal{}, true, nil
	}
	return s.GetDecimal(0, col)
}

// Timestamp returns column col of the single row as a TIMESTAMP.
func (s *SingleRowTable) Timestamp(col int) (time.Time, bool, error) {
	if err := s.validateColumn(col, wire.TypeTimestamp); err != nil {
		return time.Time{}, false, err
	}
	if s.Empty() {
		return time.Time{}, true, nil
	}
	return s.GetTimestamp(0, col)
}

// validateSingleColumn enforces the "scalar extraction" shape: exactly one
// column, of the wanted wire type (spec §4.E). The SingleValue* functions
// check for exactly one row themselves.
func validateSingleColumn(t *Table, want wire.Type) error {
	if t.ColumnCount() != 1 {
		return verr.Newf(verr.CodeInvalidCast, "expected exactly one column, got %d", t.ColumnCount()).Err()
	}
	if t.ColumnType(0) != want {
		return verr.Newf(verr.CodeInvalidCast, "single column is %s, not %s", t.ColumnType(0), want).Err()
	}
	return nil
}

// SingleValueInteger extracts the lone INTEGER cell of a 1x1 table.
func SingleValueInteger(t *Table) (int32, bool, error) {
	if err := validateSingleColumn(t, wire.TypeInteger); err != nil {
		return 0, false, err
	}
	if t.RowCount() != 1 {
		return 0, false, verr.Newf(verr.CodeInvalidRowCount, "expected exactly one row, got %d", t.RowCount()).Err()
	}
	return t.GetInteger(0, 0)
}

// SingleValueBigInt extracts the lone BIGINT cell of a 1x1 table.
func SingleValueBigInt(t *Table) (int64, bool, error) {
	if err := validateSingleColumn(t, wire.TypeBigInt); err != nil {
		return 0, false, err
	}
	if t.RowCount() != 1 {
		return 0, false, verr.Newf(verr.CodeInvalidRowCount, "expected exactly one row, got %d", t.RowCount()).Err()
	}
	return t.GetBigInt(0, 0)
}

// SingleValueString extracts the lone STRING cell of a 1x1 table.
func SingleValueString(t *Table) (string, bool, error) {
	if err := validateSingleColumn(t, wire.TypeString); err != nil {
		return "", false, err
	}
	if t.RowCount() != 1 {
		return "", false, verr.Newf(verr.CodeInvalidRowCount, "expected exactly one row, got %d", t.RowCount()).Err()
	}
	return t.GetString(0, 0)
}

// SingleColumnIntegers extracts every row of the lone INTEGER column.
func SingleColumnIntegers(t *Table) ([]int32, []bool, error) {
	if err := validateSingleColumn(t, wire.TypeInteger); err != nil {
		return nil, nil, err
	}
	vals := make([]int32, t.RowCount())
	nulls := make([]bool, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		v, n, err := t.GetInteger(i, 0)
		if err != nil {
			return nil, nil, err
		}
		vals[i], nulls[i] = v, n
	}
	return vals, nulls, nil
}

// SingleColumnStrings extracts every row of the lone STRING column.
func SingleColumnStrings(t *Table) ([]string, []bool, error) {
	if err := validateSingleColumn(t, wire.TypeString); err != nil {
		return nil, nil, err
	}
	vals := make([]string, t.RowCount())
	nulls := make([]bool, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		v, n, err := t.GetString(i, 0)
		if err != nil {
			return nil, nil, err
		}
		vals[i], nulls[i] = v, n
	}
	return vals, nulls, nil
}
