package judy

import "github.com/TomTonic/judy/internal/arena"

// scanRadix returns the first populated index in node.Child scanning from
// 0 upward (dir > 0) or 15 downward (dir < 0).
func scanRadix(node *arena.RadixNode, dir int) (int, bool) {
	if dir > 0 {
		for i := 0; i < 16; i++ {
			if !arena.SlotEmpty(node.Child[i]) {
				return i, true
			}
		}
		return 0, false
	}
	for i := 15; i >= 0; i-- {
		if !arena.SlotEmpty(node.Child[i]) {
			return i, true
		}
	}
	return 0, false
}

// descendExtreme walks down from slotVal (reached via the byte offset
// off) to the smallest (dir > 0) or largest (dir < 0) leaf beneath it,
// pushing one cursor frame per step (two for each radix byte), and
// returns that leaf's cell.
func (h *Handle) descendExtreme(off int, slotVal uint64, dir int) Cell {
	for {
		if arena.SlotEmpty(slotVal) {
			return nil
		}
		tag := arena.SlotTag(slotVal)
		idx := arena.SlotIndex(slotVal)
		switch tag {
		case arena.TagRadix:
			outer := h.arena.Radix(idx)
			hi, ok := scanRadix(outer, dir)
			if !ok {
				return nil
			}
			h.cursor.push(slotVal, off, hi, kindRadixOuter)

			innerSlot := outer.Child[hi]
			inner := h.arena.Radix(arena.SlotIndex(innerSlot))
			lo, ok2 := scanRadix(inner, dir)
			if !ok2 {
				return nil
			}
			h.cursor.push(innerSlot, off, lo, kindRadixInner)

			b := byte(hi<<4 | lo)
			if h.leafAt(off, 1, b) {
				return &inner.Child[lo]
			}
			slotVal = inner.Child[lo]
			off++

		case arena.TagSpan:
			sp := h.arena.Span(idx)
			h.cursor.push(slotVal, off, 0, kindPlain)
			if sp.Terminal {
				return &sp.Child
			}
			slotVal = sp.Child
			off += int(sp.Count)

		default: // linear
			keys, kids, countP, _ := h.arena.LinearView(tag, idx)
			count := int(*countP)
			if count == 0 {
				return nil
			}
			pos := 0
			if dir < 0 {
				pos = count - 1
			}
			keysize := keysizeAt(off)
			h.cursor.push(slotVal, off, pos, kindPlain)
			lastByte := byte(keys[pos])
			if h.leafAt(off, keysize, lastByte) {
				return &kids[pos]
			}
			slotVal = kids[pos]
			off += keysize
		}
	}
}

// First returns the cell for the smallest key in the trie, positioning
// the cursor there.
func (h *Handle) First() Cell {
	h.cursor.reset()
	if h.closed || arena.SlotEmpty(h.root) {
		return nil
	}
	return h.descendExtreme(0, h.root, +1)
}

// Last returns the cell for the largest key in the trie, positioning the
// cursor there.
func (h *Handle) Last() Cell {
	h.cursor.reset()
	if h.closed || arena.SlotEmpty(h.root) {
		return nil
	}
	return h.descendExtreme(0, h.root, -1)
}

// End is a synonym for Last, mirroring the source's judy_end — it is not
// synthesized from First, it walks the high side of the trie directly.
func (h *Handle) End() Cell { return h.Last() }

// advance moves the cursor by one key in the given direction (+1 for
// next, -1 for previous), popping frames whose node is exhausted in that
// direction and descending into any newly discovered sibling subtree.
func (h *Handle) advance(dir int) Cell {
	for !h.cursor.empty() {
		f := h.cursor.top()
		switch f.kind {
		case kindRadixInner:
			inner := h.arena.Radix(arena.SlotIndex(f.next))
			i := f.idx + dir
			for i >= 0 && i < 16 {
				if !arena.SlotEmpty(inner.Child[i]) {
					f.idx = i
					outer := &h.cursor.frames[h.cursor.level-1]
					b := byte(outer.idx<<4 | i)
					if h.leafAt(f.off, 1, b) {
						return &inner.Child[i]
					}
					return h.descendExtreme(f.off+1, inner.Child[i], dir)
				}
				i += dir
			}
			h.cursor.pop()

		case kindRadixOuter:
			outer := h.arena.Radix(arena.SlotIndex(f.next))
			i := f.idx + dir
			found := -1
			for ; i >= 0 && i < 16; i += dir {
				if !arena.SlotEmpty(outer.Child[i]) {
					found = i
					break
				}
			}
			if found < 0 {
				h.cursor.pop()
				continue
			}
			f.idx = found
			innerSlot := outer.Child[found]
			inner := h.arena.Radix(arena.SlotIndex(innerSlot))
			lo, ok := scanRadix(inner, dir)
			if !ok {
				continue
			}
			h.cursor.push(innerSlot, f.off, lo, kindRadixInner)
			b := byte(found<<4 | lo)
			if h.leafAt(f.off, 1, b) {
				return &inner.Child[lo]
			}
			return h.descendExtreme(f.off+1, inner.Child[lo], dir)

		default: // linear or a span frame, which never has a sibling
			tag := arena.SlotTag(f.next)
			if tag == arena.TagSpan {
				h.cursor.pop()
				continue
			}
			idx := arena.SlotIndex(f.next)
			keys, kids, countP, _ := h.arena.LinearView(tag, idx)
			count := int(*countP)
			i := f.idx + dir
			if i >= 0 && i < count {
				f.idx = i
				keysize := keysizeAt(f.off)
				lastByte := byte(keys[i])
				if h.leafAt(f.off, keysize, lastByte) {
					return &kids[i]
				}
				return h.descendExtreme(f.off+keysize, kids[i], dir)
			}
			h.cursor.pop()
		}
	}
	return nil
}

// Nxt returns the cell for the key following the cursor's current
// position, or the first key if the cursor is unpositioned.
func (h *Handle) Nxt() Cell {
	if h.closed {
		return nil
	}
	if h.cursor.empty() {
		return h.First()
	}
	return h.advance(+1)
}

// Prv returns the cell for the key preceding the cursor's current
// position, or the last key if the cursor is unpositioned.
func (h *Handle) Prv() Cell {
	if h.closed {
		return nil
	}
	if h.cursor.empty() {
		return h.Last()
	}
	return h.advance(-1)
}

// Strt positions the cursor at the smallest key greater than or equal to
// key (lower-bound positioning), returning its cell, or nil if no such
// key exists.
func (h *Handle) Strt(key []byte) (Cell, error) {
	if h.closed {
		return nil, ErrClosed
	}
	if err := h.checkKey(key); err != nil {
		return nil, err
	}
	cell, exact, positioned := h.lookup(key)
	if exact || positioned {
		return cell, nil
	}
	if h.cursor.empty() {
		// The miss left no frame to advance from (empty trie, or a root
		// span that sorts before key): no key is >= key.
		return nil, nil
	}
	return h.Nxt(), nil
}
