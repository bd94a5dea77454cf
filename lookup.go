package judy

import "github.com/TomTonic/judy/internal/arena"

// lookup descends for key, leaving the cursor positioned along the path
// actually walked. exact reports whether key is present. positioned
// reports that, despite a miss, the returned cell (and cursor) already
// answer the caller's lower-bound question without a further Nxt call —
// used only by Strt's span case, where the mismatch direction alone
// determines the answer.
func (h *Handle) lookup(key []byte) (cell Cell, exact bool, positioned bool) {
	h.cursor.reset()
	off := 0
	next := h.root
	for {
		if arena.SlotEmpty(next) {
			return nil, false, false
		}
		tag := arena.SlotTag(next)
		idx := arena.SlotIndex(next)
		switch tag {
		case arena.TagRadix:
			outer := h.arena.Radix(idx)
			b := byteAt(key, off)
			hi, lo := int(b>>4), int(b&0xF)

			innerSlot := outer.Child[hi]
			if arena.SlotEmpty(innerSlot) {
				h.cursor.push(next, off, hi-1, kindRadixOuter)
				return nil, false, false
			}
			h.cursor.push(next, off, hi, kindRadixOuter)

			inner := h.arena.Radix(arena.SlotIndex(innerSlot))
			childSlot := inner.Child[lo]
			if arena.SlotEmpty(childSlot) {
				h.cursor.push(innerSlot, off, lo-1, kindRadixInner)
				return nil, false, false
			}
			h.cursor.push(innerSlot, off, lo, kindRadixInner)

			if h.leafAt(off, 1, b) {
				return &inner.Child[lo], true, false
			}
			next = childSlot
			off++

		case arena.TagSpan:
			sp := h.arena.Span(idx)
			n := int(sp.Count)
			diverged := false
			for i := 0; i < n; i++ {
				kb := byteAt(key, off+i)
				if kb == sp.Bytes[i] {
					continue
				}
				diverged = true
				if kb < sp.Bytes[i] {
					// Everything under this span sorts after key.
					return h.descendExtreme(off, next, +1), false, true
				}
				// Everything under this span sorts before key.
				return nil, false, false
			}
			if diverged {
				return nil, false, false
			}
			h.cursor.push(next, off, 0, kindPlain)
			if sp.Terminal {
				return &sp.Child, true, false
			}
			next = sp.Child
			off += n

		default: // linear
			keysize := keysizeAt(off)
			val := readDigit(key, off, keysize)
			keys, kids, countP, _ := h.arena.LinearView(tag, idx)
			count := int(*countP)
			pos, found := linearFind(keys, count, val)
			if !found {
				h.cursor.push(next, off, pos-1, kindPlain)
				return nil, false, false
			}
			h.cursor.push(next, off, pos, kindPlain)
			if h.leafAt(off, keysize, byte(val)) {
				return &kids[pos], true, false
			}
			next = kids[pos]
			off += keysize
		}
	}
}

// Slot returns the cell for key, or nil if key is absent. Positions the
// cursor so a subsequent Del, Nxt, or Prv continues from key.
func (h *Handle) Slot(key []byte) (Cell, error) {
	if h.closed {
		return nil, ErrClosed
	}
	if err := h.checkKey(key); err != nil {
		return nil, err
	}
	cell, exact, _ := h.lookup(key)
	if !exact {
		return nil, nil
	}
	return cell, nil
}
