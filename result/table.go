// Package result implements the decoded table/row/single-value
// representations of component E (spec §4.E).
package result

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

// column holds one column's values in columnar (struct-of-arrays) layout.
// Only the slice matching Type is populated; this avoids boxing every cell
// the way a []interface{} row layout would, and matches the wire's
// row-major-but-typed-per-column encoding (spec §4.E rationale).
type column struct {
	typ wire.Type

	i8   []int8
	i16  []int16
	i32  []int32
	i64  []int64
	f64  []float64
	str  []string
	ts   []time.Time
	dec  []decimal.Decimal
	bin  [][]byte
	null []bool
}

func newColumn(typ wire.Type, rows int) column {
	c := column{typ: typ, null: make([]bool, rows)}
	switch typ {
	case wire.TypeTinyInt:
		c.i8 = make([]int8, rows)
	case wire.TypeSmallInt:
		c.i16 = make([]int16, rows)
	case wire.TypeInteger:
		c.i32 = make([]int32, rows)
	case wire.TypeBigInt:
		c.i64 = make([]int64, rows)
	case wire.TypeFloat:
		c.f64 = make([]float64, rows)
	case wire.TypeString:
		c.str = make([]string, rows)
	case wire.TypeTimestamp:
		c.ts = make([]time.Time, rows)
	case wire.TypeDecimal:
		c.dec = make([]decimal.Decimal, rows)
	case wire.TypeVarbinary:
		c.bin = make([][]byte, rows)
	}
	return c
}

// Table is a decoded result table: column types/names plus columnar,
// nullable storage (spec §3 "Result table", §4.E).
type Table struct {
	colTypes []wire.Type
	rawNames []byte
	rowCount int
	columns  []column

	namesOnce sync.Once
	names     []string
	namesErr  error
}

// NewTable allocates a Table for colTypes columns and rowCount rows. Column
// names are decoded lazily from rawNames on first access (spec §4.E, §9).
func NewTable(colTypes []wire.Type, rawNames []byte, rowCount int) *Table {
	t := &Table{colTypes: colTypes, rawNames: rawNames, rowCount: rowCount}
	t.columns = make([]column, len(colTypes))
	for i, typ := range colTypes {
		t.columns[i] = newColumn(typ, rowCount)
	}
	return t
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.colTypes) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rowCount }

// ColumnType returns the wire type tag of column col.
func (t *Table) ColumnType(col int) wire.Type { return t.colTypes[col] }

// ColumnNames decodes and returns all column names, caching the result.
// Names are stored on the wire as a packed sequence of 4-byte-length-prefixed
// UTF-8 strings immediately following the column type tags; decoding is
// deferred until a caller actually wants names (spec §4.E, §9).
func (t *Table) ColumnNames() ([]string, error) {
	t.namesOnce.Do(func() {
		r := wire.NewReader(t.rawNames)
		names := make([]string, len(t.colTypes))
		for i := range names {
			s, err := r.ReadString()
			if err != nil {
				t.namesErr = verr.Wrap(err, verr.CodeInvalidLength, "decoding column name").Err()
				return
			}
			names[i] = s
		}
		t.names = names
	})
	return t.names, t.namesErr
}

// ColumnName decodes (if needed) and returns the name of column col.
func (t *Table) ColumnName(col int) (string, error) {
	names, err := t.ColumnNames()
	if err != nil {
		return "", err
	}
	if col < 0 || col >= len(names) {
		return "", verr.Newf(verr.CodeInvalidCast, "column index out of range: %d", col).Err()
	}
	return names[col], nil
}

func (t *Table) checkCell(row, col int, want wire.Type) error {
	if row < 0 || row >= t.rowCount {
		return verr.Newf(verr.CodeInvalidCast, "row index out of range: %d", row).Err()
	}
	if col < 0 || col >= len(t.colTypes) {
		return verr.Newf(verr.CodeInvalidCast, "column index out of range: %d", col).Err()
	}
	if t.colTypes[col] != want {
		return verr.Newf(verr.CodeInvalidCast, "column %d is %s, not %s", col, t.colTypes[col], want).
			WithField("wire_type", t.colTypes[col].String()).WithField("requested", want.String()).Err()
	}
	return nil
}

// IsNull reports whether the cell at (row, col) is null.
func (t *Table) IsNull(row, col int) (bool, error) {
	if row < 0 || row >= t.rowCount || col < 0 || col >= len(t.colTypes) {
		return false, verr.New(verr.CodeInvalidCast, "cell index out of range").Err()
	}
	return t.columns[col].null[row], nil
}

// GetTinyInt returns the TINYINT value at (row, col).
func (t *Table) GetTinyInt(row, col int) (int8, bool, error) {
	if err := t.checkCell(row, col, wire.TypeTinyInt); err != nil {
		return 0, false, err
	}
	c := &t.columns[col]
	return c.i8[row], c.null[row], nil
}

// GetSmallInt returns the SMALLINT value at (row, col).
func (t *Table) GetSmallInt(row, col int) (int16, bool, error) {
	if err := t.checkCell(row, col, wire.TypeSmallInt); err != nil {
		return 0, false, err
	}
	c := &t.columns[col]
	return c.i16[row], c.null[row], nil
}

// GetInteger returns the INTEGER value at (row, col).
func (t *Table) GetInteger(row, col int) (int32, bool, error) {
	if err := t.checkCell(row, col, wire.TypeInteger); err != nil {
		return 0, false, err
	}
	c := &t.columns[col]
	return c.i32[row], c.null[row], nil
}

// GetBigInt returns the BIGINT value at (row, col).
func (t *Table) GetBigInt(row, col int) (int64, bool, error) {
	if err := t.checkCell(row, col, wire.TypeBigInt); err != nil {
		return 0, false, err
	}
	c := &t.columns[col]
	return c.i64[row], c.null[row], nil
}

// GetFloat returns the FLOAT value at (row, col).
func (t *Table) GetFloat(row, col int) (float64, bool, error) {
	if err := t.checkCell(row, col, wire.TypeFloat); err != nil {
		return 0, false, err
	}
	c := &t.columns[col]
	return c.f64[row], c.null[row], nil
}

// GetString returns the STRING value at (row, col).
func (t *Table) GetString(row, col int) (string, bool, error) {
	if err := t.checkCell(row, col, wire.TypeString); err != nil {
		return "", false, err
	}
	c := &t.columns[col]
	return c.str[row], c.null[row], nil
}

// GetTimestamp returns the TIMESTAMP value at (row, col).
func (t *Table) GetTimestamp(row, col int) (time.Time, bool, error) {
	if err := t.checkCell(row, col, wire.TypeTimestamp); err != nil {
		return time.Time{}, false, err
	}
	c := &t.columns[col]
	return c.ts[row], c.null[row], nil
}

// GetDecimal returns the DECIMAL value at (row, col).
func (t *Table) GetDecimal(row, col int) (decimal.Decimal, bool, error) {
	if err := t.checkCell(row, col, wire.TypeDecimal); err != nil {
		return decimal.Decimal{}, false, err
	}
	c := &t.columns[col]
	return c.dec[row], c.null[row], nil
}

// GetVarbinary returns the VARBINARY value at (row, col).
func (t *Table) GetVarbinary(row, col int) ([]byte, bool, error) {
	if err := t.checkCell(row, col, wire.TypeVarbinary); err != nil {
		return nil, false, err
	}
	c := &t.columns[col]
	return c.bin[row], c.null[row], nil
}

// Setters, used by the deserializer while decoding rows off the wire.

func (t *Table) SetTinyInt(row, col int, v int8, isNull bool) {
	c := &t.columns[col]
	c.i8[row] = v
	c.null[row] = isNull
}

func (t *Table) SetSmallInt(row, col int, v int16, isNull bool) {
	c := &t.columns[col]
	c.i16[row] = v
	c.null[row] = isNull
}

func (t *Table) SetInteger(row, col int, v int32, isNull bool) {
	c := &t.columns[col]
	c.i32[row] = v
	c.null[row] = isNull
}

func (t *Table) SetBigInt(row, col int, v int64, isNull bool) {
	c := &t.columns[col]
	c.i64[row] = v
	c.null[row] = isNull
}

func (t *Table) SetFloat(row, col int, v float64, isNull bool) {
	c := &t.columns[col]
	c.f64[row] = v
	c.null[row] = isNull
}

func (t *Table) SetString(row, col int, v string, isNull bool) {
	c := &t.columns[col]
	c.str[row] = v
	c.null[row] = isNull
}

func (t *Table) SetTimestamp(row, col int, v time.Time, isNull bool) {
	c := &t.columns[col]
	c.ts[row] = v
	c.null[row] = isNull
}

func (t *Table) SetDecimal(row, col int, v decimal.Decimal) {
	c := &t.columns[col]
	c.dec[row] = v
	c.null[row] = false
}

func (t *Table) SetDecimalNull(row, col int) {
	c := &t.columns[col]
	c.null[row] = true
}

func (t *Table) SetVarbinary(row, col int, v []byte, isNull bool) {
	c := &t.columns[col]
	c.bin[row] = v
	c.null[row] = isNull
}
