package judy

import "github.com/TomTonic/judy/internal/arena"

// byteAt returns key[off] if in range, or 0 otherwise. Reading past the
// end of a byte-string-mode key is how the implicit zero terminator is
// realized: the codec never needs a special case for "ran out of key".
func byteAt(key []byte, off int) byte {
	if off >= 0 && off < len(key) {
		return key[off]
	}
	return 0
}

// readDigit reads keysize bytes starting at off as a big-endian value,
// treating bytes past the end of key as zero.
func readDigit(key []byte, off, keysize int) uint64 {
	var v uint64
	for i := 0; i < keysize; i++ {
		v = v<<8 | uint64(byteAt(key, off+i))
	}
	return v
}

// keysizeAt returns the width in bytes of the digit beginning at off:
// W minus however far into the current word off already is.
func keysizeAt(off int) int {
	return arena.WordSize - (off % arena.WordSize)
}

// leafAt reports whether the position reached after consuming keysize
// bytes starting at off is a leaf: in fixed mode, whether all maxBytes
// have now been consumed; in byte-string mode, whether the last byte of
// the digit just consumed is the zero terminator.
func (h *Handle) leafAt(off, keysize int, lastByte byte) bool {
	if h.depth > 0 {
		return off+keysize >= h.maxBytes
	}
	return lastByte == 0
}

// linearFind returns the index of an exact key match (found=true) or the
// ascending insertion point for val (found=false, 0 <= pos <= count).
func linearFind(keys []uint64, count int, val uint64) (pos int, found bool) {
	i := 0
	for ; i < count; i++ {
		if keys[i] >= val {
			break
		}
	}
	if i < count && keys[i] == val {
		return i, true
	}
	return i, false
}
