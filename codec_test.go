package judy

import "testing"

func TestByteAtPadsWithZero(t *testing.T) {
	key := []byte("ab")
	if got := byteAt(key, 0); got != 'a' {
		t.Fatalf("byteAt(0) = %q, want 'a'", got)
	}
	if got := byteAt(key, 5); got != 0 {
		t.Fatalf("byteAt(5) = %d, want 0", got)
	}
	if got := byteAt(key, -1); got != 0 {
		t.Fatalf("byteAt(-1) = %d, want 0", got)
	}
}

func TestReadDigitBigEndian(t *testing.T) {
	key := []byte{0x01, 0x02, 0x03, 0x04}
	if got := readDigit(key, 0, 4); got != 0x01020304 {
		t.Fatalf("readDigit = %#x, want 0x01020304", got)
	}
	if got := readDigit(key, 2, 4); got != 0x03040000 {
		t.Fatalf("readDigit past end = %#x, want 0x03040000", got)
	}
}

func TestKeysizeAtWordBoundaries(t *testing.T) {
	cases := map[int]int{0: 8, 1: 7, 7: 1, 8: 8, 9: 7, 15: 1, 16: 8}
	for off, want := range cases {
		if got := keysizeAt(off); got != want {
			t.Fatalf("keysizeAt(%d) = %d, want %d", off, got, want)
		}
	}
}

func TestLinearFindOrdering(t *testing.T) {
	keys := []uint64{1, 3, 5, 7}
	if pos, found := linearFind(keys, len(keys), 5); !found || pos != 2 {
		t.Fatalf("linearFind(5) = (%d, %v), want (2, true)", pos, found)
	}
	if pos, found := linearFind(keys, len(keys), 4); found || pos != 2 {
		t.Fatalf("linearFind(4) = (%d, %v), want (2, false)", pos, found)
	}
	if pos, found := linearFind(keys, len(keys), 0); found || pos != 0 {
		t.Fatalf("linearFind(0) = (%d, %v), want (0, false)", pos, found)
	}
	if pos, found := linearFind(keys, len(keys), 9); found || pos != len(keys) {
		t.Fatalf("linearFind(9) = (%d, %v), want (%d, false)", pos, found, len(keys))
	}
}

func TestLeafAtFixedVsByteString(t *testing.T) {
	fixed := &Handle{depth: 1, maxBytes: 8}
	if !fixed.leafAt(0, 8, 0x42) {
		t.Fatalf("fixed mode: consuming all maxBytes should be a leaf")
	}
	if fixed.leafAt(0, 4, 0x42) {
		t.Fatalf("fixed mode: partial digit should not be a leaf")
	}

	byteStr := &Handle{depth: 0, maxBytes: 100}
	if !byteStr.leafAt(3, 1, 0) {
		t.Fatalf("byte-string mode: terminator byte should be a leaf")
	}
	if byteStr.leafAt(3, 1, 'x') {
		t.Fatalf("byte-string mode: non-terminator byte should not be a leaf")
	}
}
