package message

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voltdb/voltgo/internal/verr"
	"github.com/voltdb/voltgo/wire"
)

// WriteCall serializes a full procedure-call payload: name, call id, and
// parameter list (spec §3 "Procedure call payload").
func WriteCall(w *wire.Writer, procedure string, callID uint64, params []interface{}) error {
	w.WriteString(procedure)
	w.WriteUint64(callID)
	return WriteParameters(w, params)
}

// WriteParameters writes a 2-byte count followed by each parameter's type
// tag and encoded value, in order (spec §3, §4.C, §8 property 3).
func WriteParameters(w *wire.Writer, values []interface{}) error {
	if len(values) > 0xFFFF {
		return verr.Newf(verr.CodeUnsupportedParameterType, "too many parameters: %d", len(values)).Err()
	}
	w.WriteUint16(uint16(len(values)))
	for i, v := range values {
		if err := writeParam(w, v); err != nil {
			return verr.Wrapf(err, verr.GetCode(err), "parameter %d", i).Err()
		}
	}
	return nil
}

func writeParam(w *wire.Writer, v interface{}) error {
	switch val := v.(type) {
	case int8:
		w.WriteInt8(int8(wire.TypeTinyInt))
		w.WriteInt8(val)
	case int16:
		w.WriteInt8(int8(wire.TypeSmallInt))
		w.WriteInt16(val)
	case int32:
		w.WriteInt8(int8(wire.TypeInteger))
		w.WriteInt32(val)
	case int:
		w.WriteInt8(int8(wire.TypeInteger))
		w.WriteInt32(int32(val))
	case int64:
		w.WriteInt8(int8(wire.TypeBigInt))
		w.WriteInt64(val)
	case float64:
		w.WriteInt8(int8(wire.TypeFloat))
		w.WriteFloat64(val)
	case string:
		w.WriteInt8(int8(wire.TypeString))
		return writeLengthPrefixedString(w, val)
	case []byte:
		w.WriteInt8(int8(wire.TypeVarbinary))
		return writeLengthPrefixedBytes(w, val)
	case time.Time:
		w.WriteInt8(int8(wire.TypeTimestamp))
		w.WriteInt64(timeToMicros(val))
	case decimal.Decimal:
		w.WriteInt8(int8(wire.TypeDecimal))
		w.WriteBytes(wire.EncodeDecimal(val))

	case NullString:
		w.WriteInt8(int8(wire.TypeString))
		w.WriteInt32(wire.NullLength)
	case NullVarbinary:
		w.WriteInt8(int8(wire.TypeVarbinary))
		w.WriteInt32(wire.NullLength)
	case NullTimestamp:
		w.WriteInt8(int8(wire.TypeTimestamp))
		w.WriteInt64(wire.NullBigInt)
	case NullDecimal:
		w.WriteInt8(int8(wire.TypeDecimal))
		w.WriteBytes(wire.NullDecimalBytes())

	case TinyIntArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeTinyInt))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteInt8(e)
		}
	case SmallIntArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeSmallInt))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteInt16(e)
		}
	case IntegerArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeInteger))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteInt32(e)
		}
	case BigIntArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeBigInt))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteInt64(e)
		}
	case FloatArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeFloat))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteFloat64(e)
		}
	case StringArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeString))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			if err := writeLengthPrefixedString(w, e); err != nil {
				return err
			}
		}
	case VarbinaryArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeVarbinary))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			if err := writeLengthPrefixedBytes(w, e); err != nil {
				return err
			}
		}
	case TimestampArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeTimestamp))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteInt64(timeToMicros(e))
		}
	case DecimalArray:
		w.WriteInt8(int8(wire.TypeArray))
		w.WriteInt8(int8(wire.TypeDecimal))
		w.WriteUint16(uint16(len(val)))
		for _, e := range val {
			w.WriteBytes(wire.EncodeDecimal(e))
		}

	default:
		return verr.Newf(verr.CodeUnsupportedParameterType, "unsupported parameter type %T", v).
			WithField("type_name", fmt.Sprintf("%T", v)).Err()
	}
	return nil
}

func writeLengthPrefixedString(w *wire.Writer, s string) error {
	if len(s) > MaxValueLength {
		return verr.Newf(verr.CodeStringTooLong, "string too long: %d > %d", len(s), MaxValueLength).
			WithField("len", len(s)).WithField("max", MaxValueLength).Err()
	}
	w.WriteString(s)
	return nil
}

func writeLengthPrefixedBytes(w *wire.Writer, b []byte) error {
	if len(b) > MaxValueLength {
		return verr.Newf(verr.CodeStringTooLong, "varbinary too long: %d > %d", len(b), MaxValueLength).
			WithField("len", len(b)).WithField("max", MaxValueLength).Err()
	}
	w.WriteInt32(int32(len(b)))
	w.WriteBytes(b)
	return nil
}

func timeToMicros(t time.Time) int64 {
	return t.UnixMicro()
}
