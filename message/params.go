// Package message builds and parses the procedure-call and response message
// bodies defined in spec §3 (components C and D: Serializer/Deserializer).
package message

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxValueLength is the largest STRING/VARBINARY payload the wire accepts,
// in bytes of UTF-8/raw content (spec §4.C).
const MaxValueLength = 1024 * 1024

// NullString is an explicit typed null for a STRING parameter, used when the
// caller needs to send a null of a specific declared type without ambiguity
// (spec §4.C).
type NullString struct{}

// NullVarbinary is an explicit typed null for a VARBINARY parameter.
type NullVarbinary struct{}

// NullTimestamp is an explicit typed null for a TIMESTAMP parameter.
type NullTimestamp struct{}

// NullDecimal is an explicit typed null for a DECIMAL parameter.
type NullDecimal struct{}

// sentinel values for the non-string/varbinary/timestamp scalar nulls.
// Callers pass these directly since the zero value of the Go type is a
// legitimate non-null value and cannot double as the sentinel.
const (
	NullTinyInt  int8  = -128
	NullSmallInt int16 = -32768
	NullInteger  int32 = -1 << 31
	NullBigInt   int64 = -1 << 63
)

// NullFloat is the FLOAT null sentinel value.
const NullFloat float64 = -1.7e308

// these type aliases give array parameters an unambiguous Go type distinct
// from a caller's incidental []byte/[]string used for a single VARBINARY or
// STRING value.
type (
	TinyIntArray   []int8
	SmallIntArray  []int16
	IntegerArray   []int32
	BigIntArray    []int64
	FloatArray     []float64
	StringArray    []string
	TimestampArray []time.Time
	DecimalArray   []decimal.Decimal
	VarbinaryArray [][]byte
)
