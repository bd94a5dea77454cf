package judy

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/TomTonic/judy/internal/arena"
)

// Key is a byte slice shaped for use with Cell, Slot, and Strt. Use the
// provided constructors to build Keys from primitive types or normalized
// strings rather than assembling the bytes by hand.
//
// Integer encoding policy
// -----------------------
// Every integer constructor produces one arena.WordSize-byte (8-byte)
// big-endian digit, suitable as a single-depth fixed-integer-mode key (or
// as one digit of a multi-digit key via EncodeDigits). To keep
// lexicographic byte order equal to numeric order across both signed and
// unsigned inputs, every integer constructor adds an offset of 1<<63
// before encoding: signed values are widened to int64 first, unsigned
// values are treated as uint64, then the offset is added and the result
// is written big-endian.
//
// One consequence: FromInt64(0) equals FromUint64(0), and
// math.MinInt64 maps to the all-zero digit, so negative values always
// sort before zero and positive values as expected. Unsigned values at
// or above 1<<63 wrap around under the offset: FromUint64 and FromUint
// preserve numeric order only below 1<<63, and larger values sort before
// FromUint64(0).
type Key []byte

// FromBytes returns a copy of b as a Key, for byte-string mode. A nil b
// returns an empty, non-nil Key.
func FromBytes(b []byte) Key {
	if b == nil {
		return []byte{}
	}
	kb := make([]byte, len(b))
	copy(kb, b)
	return Key(kb)
}

// FromString returns a Key holding the UTF-8 encoding of s normalized to
// Unicode NFC, for byte-string mode. FromString does not alter case or
// trim spaces; it only normalizes composition so that canonically
// equivalent strings compare equal as Keys.
func FromString(s string) Key {
	s = norm.NFC.String(s)
	return FromBytes([]byte(s))
}

const int64Offset = uint64(1) << 63

// FromInt converts an int to an 8-byte big-endian digit.
func FromInt(i int) Key { return FromInt64(int64(i)) }

// FromInt64 converts an int64 to an 8-byte big-endian digit, order
// preserving across the full signed range.
func FromInt64(i int64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i)+int64Offset)
	return FromBytes(b[:])
}

// FromInt32 converts an int32 to an 8-byte big-endian digit.
func FromInt32(i int32) Key { return FromInt64(int64(i)) }

// FromInt16 converts an int16 to an 8-byte big-endian digit.
func FromInt16(i int16) Key { return FromInt64(int64(i)) }

// FromInt8 converts an int8 to an 8-byte big-endian digit.
func FromInt8(i int8) Key { return FromInt64(int64(i)) }

// FromUint converts a uint to an 8-byte big-endian digit.
func FromUint(u uint) Key { return FromUint64(uint64(u)) }

// FromUint64 converts a uint64 to an 8-byte big-endian digit.
func FromUint64(u uint64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u+int64Offset)
	return FromBytes(b[:])
}

// FromUint32 converts a uint32 to an 8-byte big-endian digit.
func FromUint32(u uint32) Key { return FromUint64(uint64(u)) }

// FromUint16 converts a uint16 to an 8-byte big-endian digit.
func FromUint16(u uint16) Key { return FromUint64(uint64(u)) }

// FromUint8 converts a uint8 to an 8-byte big-endian digit.
func FromUint8(u uint8) Key { return FromUint64(uint64(u)) }

// FromByte is an alias for FromUint8.
func FromByte(b byte) Key { return FromUint8(b) }

// FromRune converts a rune to its UTF-8 encoding, for byte-string mode.
func FromRune(r rune) Key {
	var buf [4]byte
	n := utf8EncodeRune(buf[:], r)
	return FromBytes(buf[:n])
}

// EncodeDigits concatenates vals into a fixed-integer-mode key of
// len(vals) arena.WordSize-byte big-endian digits, applying the same
// 1<<63 offset as the scalar constructors to each digit. Use this to
// build multi-digit keys for a Handle opened with depth == len(vals).
func EncodeDigits(vals ...uint64) Key {
	k := make(Key, len(vals)*arena.WordSize)
	for i, v := range vals {
		binary.BigEndian.PutUint64(k[i*arena.WordSize:], v+int64Offset)
	}
	return k
}

// DecodeDigits reverses EncodeDigits, splitting k into its arena.WordSize-
// byte digits and removing the 1<<63 offset from each. len(k) must be a
// multiple of arena.WordSize.
func DecodeDigits(k Key) []uint64 {
	n := len(k) / arena.WordSize
	vals := make([]uint64, n)
	for i := 0; i < n; i++ {
		vals[i] = binary.BigEndian.Uint64(k[i*arena.WordSize:]) - int64Offset
	}
	return vals
}

// Bytes returns a copy of the Key as a byte slice.
func (k Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	b := make([]byte, len(k))
	copy(b, k)
	return b
}

// Clone returns an independent copy of the Key. A nil Key clones to nil.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	kb := make([]byte, len(k))
	copy(kb, k)
	return Key(kb)
}

// String returns the Key as uppercase hex byte tuples, comma-separated
// and bracketed (e.g. "[01,AB,00]").
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i, b := range k {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether k and other have the same contents.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// LessThan reports whether k sorts before other under the same
// lexicographic order the trie itself uses.
func (k Key) LessThan(other Key) bool {
	for i := 0; i < len(k) && i < len(other); i++ {
		if k[i] < other[i] {
			return true
		} else if k[i] > other[i] {
			return false
		}
	}
	return len(k) < len(other)
}

// IsEmpty reports whether the Key is empty or nil.
func (k Key) IsEmpty() bool { return len(k) == 0 }

func utf8EncodeRune(buf []byte, r rune) int {
	switch {
	case r <= 0x7F:
		buf[0] = byte(r)
		return 1
	case r <= 0x7FF:
		buf[0] = 0xC0 | byte(r>>6)
		buf[1] = 0x80 | byte(r)&0x3F
		return 2
	case r <= 0xFFFF:
		buf[0] = 0xE0 | byte(r>>12)
		buf[1] = 0x80 | byte(r>>6)&0x3F
		buf[2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		buf[0] = 0xF0 | byte(r>>18)
		buf[1] = 0x80 | byte(r>>12)&0x3F
		buf[2] = 0x80 | byte(r>>6)&0x3F
		buf[3] = 0x80 | byte(r)&0x3F
		return 4
	}
}
