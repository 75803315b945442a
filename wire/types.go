package wire

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Type is the one-byte scalar type tag on the wire (spec §3).
type Type int8

const (
	TypeTinyInt   Type = 3
	TypeSmallInt  Type = 4
	TypeInteger   Type = 5
	TypeBigInt    Type = 6
	TypeFloat     Type = 8
	TypeString    Type = 9
	TypeTimestamp Type = 11
	TypeDecimal   Type = 22
	TypeVarbinary Type = 25

	// TypeArray is a synthetic tag: it precedes an element-type tag and a
	// 2-byte element count on the wire. It never appears as a column type.
	TypeArray Type = -99
)

func (t Type) String() string {
	switch t {
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeDecimal:
		return "DECIMAL"
	case TypeVarbinary:
		return "VARBINARY"
	case TypeArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Null sentinel values, in-band because the wire has no nullability bit for
// scalars (spec §3).
const (
	NullTinyInt   int8    = -128
	NullSmallInt  int16   = -32768
	NullInteger   int32   = -1 << 31
	NullBigInt    int64   = -1 << 63
	NullTimestamp int64   = NullBigInt
	NullLength    int32   = -1 // STRING/VARBINARY null length marker
)

// NullFloat is the FLOAT null sentinel, compared by bit pattern rather than
// by value per spec §3.
const NullFloat float64 = -1.7e308

// IsNullFloat reports whether v is the FLOAT null sentinel (bit-compared).
func IsNullFloat(v float64) bool {
	return math.Float64bits(v) == math.Float64bits(NullFloat)
}

// DecimalByteLen is the fixed wire width of a DECIMAL value.
const DecimalByteLen = 16

// DecimalScale is VoltDB's canonical DECIMAL scale: 12 digits after the point.
const DecimalScale = 12

// decimalNullBytes is the most-negative signed 128-bit value, big-endian.
// spec §9 Open Question: confirmed as the signed 128-bit minimum per the
// "most-negative 128-bit value" wording in spec §3.
var decimalNullBytes = func() [DecimalByteLen]byte {
	var b [DecimalByteLen]byte
	b[0] = 0x80
	return b
}()

// IsNullDecimal reports whether the 16-byte big-endian payload is the
// DECIMAL null sentinel.
func IsNullDecimal(b []byte) bool {
	if len(b) != DecimalByteLen {
		return false
	}
	for i, v := range decimalNullBytes {
		if b[i] != v {
			return false
		}
	}
	return true
}

// NullDecimalBytes returns the 16-byte DECIMAL null sentinel.
func NullDecimalBytes() []byte {
	out := make([]byte, DecimalByteLen)
	copy(out, decimalNullBytes[:])
	return out
}

// EncodeDecimal renders d as a 16-byte big-endian two's-complement integer
// scaled by 10^DecimalScale, matching VoltDB's on-wire DECIMAL layout.
func EncodeDecimal(d decimal.Decimal) []byte {
	scaled := d.Shift(DecimalScale).Truncate(0).BigInt()
	return bigIntToTwosComplement(scaled, DecimalByteLen)
}

// DecodeDecimal parses a 16-byte big-endian two's-complement DECIMAL payload
// into a decimal.Decimal scaled by 10^-DecimalScale.
func DecodeDecimal(b []byte) decimal.Decimal {
	i := twosComplementToBigInt(b)
	return decimal.NewFromBigInt(i, -DecimalScale)
}

func bigIntToTwosComplement(v *big.Int, width int) []byte {
	out := make([]byte, width)
	if v.Sign() >= 0 {
		b := v.Bytes()
		copy(out[width-len(b):], b)
		return out
	}
	// Two's complement of a negative value: (1<<bits) + v
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	mod.Add(mod, v)
	b := mod.Bytes()
	copy(out[width-len(b):], b)
	return out
}

func twosComplementToBigInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}
