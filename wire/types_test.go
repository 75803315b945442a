package wire

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNullFloatBitCompared(t *testing.T) {
	if !IsNullFloat(NullFloat) {
		t.Fatal("NullFloat must report as null")
	}
	if IsNullFloat(0) {
		t.Fatal("0 must not report as null")
	}
	// NaN has a different bit pattern than the sentinel and must not match.
	nan := math.NaN()
	if IsNullFloat(nan) {
		t.Fatal("non-sentinel value reported as null")
	}
}

func TestDecimalNullPattern(t *testing.T) {
	b := NullDecimalBytes()
	if len(b) != DecimalByteLen {
		t.Fatalf("expected %d bytes, got %d", DecimalByteLen, len(b))
	}
	if b[0] != 0x80 {
		t.Fatalf("expected sign byte 0x80, got %#x", b[0])
	}
	for i := 1; i < len(b); i++ {
		if b[i] != 0 {
			t.Fatalf("expected zero byte at %d, got %#x", i, b[i])
		}
	}
	if !IsNullDecimal(b) {
		t.Fatal("NullDecimalBytes must report as null")
	}
}

func TestDecimalEncodeDecodeRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "-1", "123.456789012345", "-999999.000000000001"}
	for _, s := range cases {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("NewFromString(%q): %v", s, err)
		}
		encoded := EncodeDecimal(d)
		if len(encoded) != DecimalByteLen {
			t.Fatalf("encoded length = %d, want %d", len(encoded), DecimalByteLen)
		}
		decoded := DecodeDecimal(encoded)
		want := d.Truncate(DecimalScale)
		if !decoded.Equal(want) {
			t.Fatalf("round trip for %q: got %s, want %s", s, decoded, want)
		}
	}
}

func TestTypeStringNames(t *testing.T) {
	cases := map[Type]string{
		TypeTinyInt:   "TINYINT",
		TypeInteger:   "INTEGER",
		TypeDecimal:   "DECIMAL",
		TypeVarbinary: "VARBINARY",
		TypeArray:     "ARRAY",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
