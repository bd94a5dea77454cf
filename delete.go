package judy

import "github.com/TomTonic/judy/internal/arena"

// Del removes the key the cursor currently addresses (as left by Slot,
// Cell, Strt, First, Last, Nxt, or Prv) and returns the predecessor's
// cell, positioning the cursor there. Returns nil if the cursor is
// unpositioned or the deleted key had no predecessor.
func (h *Handle) Del() (Cell, error) {
	if h.closed {
		return nil, ErrClosed
	}
	if h.readOnly {
		return nil, ErrReadOnly
	}
	if h.cursor.empty() {
		return nil, nil
	}
	h.metrics.keys.Dec()

	// Find the predecessor while the trie is still intact, using the
	// already-correct traversal code, then restore the original
	// position before mutating anything.
	original := h.cursor.clone()
	predCell := h.advance(-1)
	predCursor := h.cursor.clone()
	h.cursor = original.clone()

	for !h.cursor.empty() {
		f := h.cursor.top()
		tag := arena.SlotTag(f.next)
		switch {
		case tag == arena.TagSpan:
			h.arena.FreeSpan(arena.SlotIndex(f.next))
			h.cursor.pop()

		case f.kind == kindRadixInner:
			inner := h.arena.Radix(arena.SlotIndex(f.next))
			inner.Child[f.idx] = 0
			if inner.Count > 0 {
				inner.Count--
			}
			if inner.Count > 0 {
				h.cursor = predCursor
				return predCell, nil
			}
			innerIdx := arena.SlotIndex(f.next)
			h.cursor.pop()
			h.arena.FreeRadix(innerIdx)

			outer := h.cursor.top()
			if outer == nil {
				h.root = 0
				h.cursor = predCursor
				return predCell, nil
			}
			outerNode := h.arena.Radix(arena.SlotIndex(outer.next))
			outerNode.Child[outer.idx] = 0
			if outerNode.Count > 0 {
				outerNode.Count--
			}
			if outerNode.Count > 0 {
				h.cursor = predCursor
				return predCell, nil
			}
			outerIdx := arena.SlotIndex(outer.next)
			h.cursor.pop()
			h.arena.FreeRadix(outerIdx)

		case f.kind == kindPlain:
			idx := arena.SlotIndex(f.next)
			keys, kids, countP, _ := h.arena.LinearView(tag, idx)
			n := int(*countP)
			pos := f.idx
			copy(keys[pos:n-1], keys[pos+1:n])
			copy(kids[pos:n-1], kids[pos+1:n])
			keys[n-1], kids[n-1] = 0, 0
			*countP--
			if *countP > 0 {
				h.cursor = predCursor
				return predCell, nil
			}
			h.cursor.pop()
			h.arena.FreeLinear(tag, idx)

		default:
			h.cursor.pop()
		}
	}

	h.root = 0
	h.cursor = predCursor
	return predCell, nil
}
