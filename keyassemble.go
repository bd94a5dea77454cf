package judy

import "github.com/TomTonic/judy/internal/arena"

// Key reconstructs the key addressed by the cursor's current position
// into buf, returning the number of bytes written. Walks the cursor from
// the root down, combining each radix frame pair back into one byte,
// copying a span's stored run verbatim, and re-deriving each linear
// frame's digit from its node's Keys entry. Stops at len(buf), or (in
// byte-string mode) at the terminator.
func (h *Handle) Key(buf []byte) int {
	if h.cursor.empty() {
		return 0
	}
	n := 0
	i := 1
	for i <= h.cursor.level && n < len(buf) {
		f := h.cursor.frames[i]
		tag := arena.SlotTag(f.next)

		switch {
		case f.kind == kindRadixOuter:
			if i+1 > h.cursor.level {
				i++
				continue
			}
			inner := h.cursor.frames[i+1]
			b := byte(f.idx<<4 | inner.idx)
			if h.depth == 0 && b == 0 {
				return n
			}
			buf[n] = b
			n++
			i += 2

		case tag == arena.TagSpan:
			sp := h.arena.Span(arena.SlotIndex(f.next))
			for k := 0; k < int(sp.Count) && n < len(buf); k++ {
				b := sp.Bytes[k]
				if h.depth == 0 && b == 0 {
					return n
				}
				buf[n] = b
				n++
			}
			i++

		default: // linear
			keys, _, _, _ := h.arena.LinearView(tag, arena.SlotIndex(f.next))
			keysize := keysizeAt(f.off)
			val := keys[f.idx]
			for k := keysize - 1; k >= 0 && n < len(buf); k-- {
				b := byte(val >> uint(k*8))
				if h.depth == 0 && b == 0 {
					return n
				}
				buf[n] = b
				n++
			}
			i++
		}
	}
	return n
}
