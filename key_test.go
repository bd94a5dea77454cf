package judy

import "testing"

func TestIntegerKeysPreserveNumericOrder(t *testing.T) {
	values := []int64{-100, -1, 0, 1, 100}
	var keys []Key
	for _, v := range values {
		keys = append(keys, FromInt64(v))
	}
	for i := 1; i < len(keys); i++ {
		if !keys[i-1].LessThan(keys[i]) {
			t.Fatalf("FromInt64(%d) should sort before FromInt64(%d)", values[i-1], values[i])
		}
	}
}

func TestFromInt64EqualsFromUint64AtZero(t *testing.T) {
	if !FromInt64(0).Equal(FromUint64(0)) {
		t.Fatalf("FromInt64(0) and FromUint64(0) should encode identically")
	}
}

func TestEncodeDecodeDigitsRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 1 << 40, ^uint64(0)}
	k := EncodeDigits(vals...)
	if len(k) != len(vals)*8 {
		t.Fatalf("EncodeDigits length = %d, want %d", len(k), len(vals)*8)
	}
	got := DecodeDigits(k)
	for i := range vals {
		if got[i] != vals[i] {
			t.Fatalf("DecodeDigits[%d] = %d, want %d", i, got[i], vals[i])
		}
	}
}

func TestFromStringNormalizesNFC(t *testing.T) {
	// "e" + combining acute accent (U+0065 U+0301) vs precomposed
	// e-acute (U+00E9) normalize to the same NFC byte sequence.
	decomposed := FromString("\u0065\u0301")
	precomposed := FromString("\u00e9")
	if !decomposed.Equal(precomposed) {
		t.Fatalf("FromString should normalize to the same NFC form")
	}
}

func TestKeyStringFormat(t *testing.T) {
	k := Key{0x01, 0xAB, 0x00}
	if got, want := k.String(), "[01,AB,00]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
