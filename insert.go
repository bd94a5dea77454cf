package judy

import "github.com/TomTonic/judy/internal/arena"

// Cell returns the cell for key, creating every node needed along the
// way if key is not yet present. Returns ErrReadOnly on a cloned handle.
func (h *Handle) Cell(key []byte) (Cell, error) {
	if h.closed {
		return nil, ErrClosed
	}
	if h.readOnly {
		return nil, ErrReadOnly
	}
	if err := h.checkKey(key); err != nil {
		return nil, err
	}
	h.cursor.reset()
	off := 0
	slotRef := &h.root
	for {
		s := *slotRef
		if arena.SlotEmpty(s) {
			cell, err := h.buildTail(slotRef, key, off)
			if err == nil {
				h.metrics.keys.Inc()
			}
			return cell, err
		}
		tag := arena.SlotTag(s)
		idx := arena.SlotIndex(s)
		switch tag {
		case arena.TagRadix:
			cell, nextRef, nextOff, done, isNew := h.insertRadix(s, idx, key, off)
			if done {
				if isNew {
					h.metrics.keys.Inc()
				}
				return cell, nil
			}
			slotRef, off = nextRef, nextOff

		case arena.TagSpan:
			cell, nextRef, nextOff, done, restart := h.insertSpan(slotRef, s, idx, key, off)
			if done {
				return cell, nil
			}
			if restart {
				continue
			}
			slotRef, off = nextRef, nextOff

		default: // linear
			cell, nextRef, nextOff, done, restart, isNew := h.insertLinear(slotRef, s, tag, idx, key, off)
			if done {
				if isNew {
					h.metrics.keys.Inc()
				}
				return cell, nil
			}
			if restart {
				continue
			}
			slotRef, off = nextRef, nextOff
		}
	}
}

// insertRadix descends one byte through a radix pair, allocating the
// inner table on demand. Radix nodes never fill (16 slots, fixed), so
// there is no promote/split step here.
func (h *Handle) insertRadix(s uint64, idx int32, key []byte, off int) (cell Cell, nextRef *uint64, nextOff int, done, isNew bool) {
	outer := h.arena.Radix(idx)
	b := byteAt(key, off)
	hi, lo := int(b>>4), int(b&0xF)

	if arena.SlotEmpty(outer.Child[hi]) {
		innerIdx := h.arena.AllocRadix()
		outer.Child[hi] = arena.PackSlot(arena.TagRadix, innerIdx)
		outer.Count++
	}
	h.cursor.push(s, off, hi, kindRadixOuter)

	innerSlot := outer.Child[hi]
	inner := h.arena.Radix(arena.SlotIndex(innerSlot))
	wasEmpty := arena.SlotEmpty(inner.Child[lo])
	h.cursor.push(innerSlot, off, lo, kindRadixInner)

	leaf := h.leafAt(off, 1, b)
	if wasEmpty {
		inner.Count++
	}
	if leaf {
		return &inner.Child[lo], nil, 0, true, wasEmpty
	}
	return nil, &inner.Child[lo], off + 1, false, false
}

// insertSpan matches key against a span's stored run. A full match
// continues into (or terminates at) the span's child. A mismatch splits
// the span into a chain of linear-1 nodes first and asks the caller to
// retry the same offset against the replacement.
func (h *Handle) insertSpan(slotRef *uint64, s uint64, idx int32, key []byte, off int) (cell Cell, nextRef *uint64, nextOff int, done, restart bool) {
	sp := h.arena.Span(idx)
	n := int(sp.Count)
	for i := 0; i < n; i++ {
		if byteAt(key, off+i) != sp.Bytes[i] {
			h.spanSplit(slotRef, idx, off)
			return nil, nil, 0, false, true
		}
	}
	h.cursor.push(s, off, 0, kindPlain)
	if sp.Terminal {
		return &sp.Child, nil, 0, true, false
	}
	return nil, &sp.Child, off + n, false, false
}

// spanSplit replaces the span node at idx with a chain of linear-1 nodes,
// one per word-aligned digit, preserving its child at the end of the
// chain. The caller retries the insert against the replacement starting
// at the same offset, which will now diverge inside a linear-1 node
// instead of a span.
//
// A non-terminal span's Count bytes don't generally divide evenly into
// WordSize-byte digits (SpanBytes is 28, not a multiple of 8), so the
// final digit can run past Count. When it does and the span is
// non-terminal, the bytes past Count are real data living under Child,
// not an implicit end-of-key zero run, so they can't be zero-padded
// without losing whatever key shares that prefix. In that case the
// leftover bytes are kept as a short span anchored at exactly off+Count
// instead, which Child attaches to directly.
func (h *Handle) spanSplit(slotRef *uint64, idx int32, off int) {
	sp := *h.arena.Span(idx)
	h.arena.FreeSpan(idx)
	if sp.Count == 0 {
		*slotRef = sp.Child
		return
	}

	cur := slotRef
	pos := 0
	o := off
	for {
		keysize := keysizeAt(o)
		remaining := int(sp.Count) - pos
		if remaining < keysize && !sp.Terminal {
			tailIdx := h.arena.AllocSpan()
			tail := h.arena.Span(tailIdx)
			copy(tail.Bytes[:remaining], sp.Bytes[pos:pos+remaining])
			tail.Count = uint8(remaining)
			tail.Terminal = false
			tail.Child = sp.Child
			*cur = arena.PackSlot(arena.TagSpan, tailIdx)
			return
		}

		var val uint64
		for i := 0; i < keysize; i++ {
			if pos+i < int(sp.Count) {
				val = val<<8 | uint64(sp.Bytes[pos+i])
			} else {
				val <<= 8
			}
		}
		lIdx := h.arena.AllocLinear1()
		ln := h.arena.Linear1(lIdx)
		ln.Keys[0] = val
		ln.Count = 1
		*cur = arena.PackSlot(arena.TagLinear1, lIdx)

		consumed := keysize
		if pos+consumed > int(sp.Count) {
			consumed = int(sp.Count) - pos
		}
		pos += consumed
		o += keysize
		if pos >= int(sp.Count) {
			ln.Kids[0] = sp.Child
			return
		}
		cur = &ln.Kids[0]
	}
}

// insertLinear finds key's digit within a linear-N node, inserting it in
// order if there is room, or promoting (to the next linear size) or
// splitting (linear-32 to a radix pair) before asking the caller to
// retry the same offset.
func (h *Handle) insertLinear(slotRef *uint64, s uint64, tag arena.Tag, idx int32, key []byte, off int) (cell Cell, nextRef *uint64, nextOff int, done, restart, isNew bool) {
	keysize := keysizeAt(off)
	val := readDigit(key, off, keysize)
	keys, kids, countP, cap := h.arena.LinearView(tag, idx)
	count := int(*countP)
	pos, found := linearFind(keys, count, val)
	leaf := h.leafAt(off, keysize, byte(val))

	if found {
		h.cursor.push(s, off, pos, kindPlain)
		if leaf {
			return &kids[pos], nil, 0, true, false, false
		}
		return nil, &kids[pos], off + keysize, false, false, false
	}

	if count < cap {
		copy(keys[pos+1:count+1], keys[pos:count])
		copy(kids[pos+1:count+1], kids[pos:count])
		keys[pos] = val
		kids[pos] = 0
		*countP++
		h.cursor.push(s, off, pos, kindPlain)
		if leaf {
			return &kids[pos], nil, 0, true, false, true
		}
		return nil, &kids[pos], off + keysize, false, false, false
	}

	if tag != arena.TagLinear32 {
		*slotRef = h.promote(tag, idx)
		return nil, nil, 0, false, true, false
	}
	*slotRef = h.splitLinear32(tag, idx, off)
	return nil, nil, 0, false, true, false
}

// promote copies a full linear-N node into the next larger size class
// and frees the old one.
func (h *Handle) promote(tag arena.Tag, idx int32) uint64 {
	newTag := arena.NextLinearTag(tag)
	newIdx := h.arena.AllocLinear(newTag)

	oldKeys, oldKids, oldCountP, _ := h.arena.LinearView(tag, idx)
	newKeys, newKids, newCountP, _ := h.arena.LinearView(newTag, newIdx)
	n := int(*oldCountP)
	copy(newKeys[:n], oldKeys[:n])
	copy(newKids[:n], oldKids[:n])
	*newCountP = uint8(n)

	h.arena.FreeLinear(tag, idx)
	h.metrics.promotions.Inc()
	return arena.PackSlot(newTag, newIdx)
}

// splitLinear32 replaces a full linear-32 node with a radix pair,
// grouping its 32 entries by their most significant byte and rebuilding
// each group as the smallest linear node that fits it (or, when the
// digit is fully consumed by that one byte, a direct child reference).
func (h *Handle) splitLinear32(tag arena.Tag, idx int32, off int) uint64 {
	keys, kids, countP, _ := h.arena.LinearView(tag, idx)
	n := int(*countP)
	keysize := keysizeAt(off)
	shift := uint((keysize - 1) * 8)

	outerIdx := h.arena.AllocRadix()
	outer := h.arena.Radix(outerIdx)

	i := 0
	for i < n {
		msb := byte(keys[i] >> shift)
		j := i + 1
		for j < n && byte(keys[j]>>shift) == msb {
			j++
		}
		groupCount := j - i
		hi, lo := int(msb>>4), int(msb&0xF)

		if arena.SlotEmpty(outer.Child[hi]) {
			innerIdx := h.arena.AllocRadix()
			outer.Child[hi] = arena.PackSlot(arena.TagRadix, innerIdx)
			outer.Count++
		}
		inner := h.arena.Radix(arena.SlotIndex(outer.Child[hi]))

		if keysize == 1 {
			inner.Child[lo] = kids[i]
		} else {
			mask := uint64(1)<<uint((keysize-1)*8) - 1
			gTag := arena.LinearFitTag(groupCount)
			gIdx := h.arena.AllocLinear(gTag)
			gKeys, gKids, gCountP, _ := h.arena.LinearView(gTag, gIdx)
			for k := 0; k < groupCount; k++ {
				gKeys[k] = keys[i+k] & mask
				gKids[k] = kids[i+k]
			}
			*gCountP = uint8(groupCount)
			inner.Child[lo] = arena.PackSlot(gTag, gIdx)
		}
		inner.Count++
		i = j
	}

	h.arena.FreeLinear(tag, idx)
	h.metrics.splits.Inc()
	return arena.PackSlot(arena.TagRadix, outerIdx)
}

// buildTail fills in the remainder of a path for a key that ran off the
// end of the trie: first a linear-1 node for any partial digit still
// pending, then either a chain of span nodes (byte-string mode) down to
// the implicit terminator, or one linear-1 node per remaining digit
// (fixed-integer mode) out to the configured depth.
func (h *Handle) buildTail(slotRef *uint64, key []byte, off int) (Cell, error) {
	cur := slotRef

	if off%arena.WordSize != 0 {
		keysize := keysizeAt(off)
		val := readDigit(key, off, keysize)
		idx := h.arena.AllocLinear1()
		ln := h.arena.Linear1(idx)
		ln.Keys[0] = val
		ln.Count = 1
		*cur = arena.PackSlot(arena.TagLinear1, idx)
		h.cursor.push(*cur, off, 0, kindPlain)
		if h.leafAt(off, keysize, byte(val)) {
			return &ln.Kids[0], nil
		}
		cur = &ln.Kids[0]
		off += keysize
	}

	if h.depth > 0 {
		for off < h.maxBytes {
			keysize := keysizeAt(off)
			val := readDigit(key, off, keysize)
			idx := h.arena.AllocLinear1()
			ln := h.arena.Linear1(idx)
			ln.Keys[0] = val
			ln.Count = 1
			*cur = arena.PackSlot(arena.TagLinear1, idx)
			h.cursor.push(*cur, off, 0, kindPlain)
			if h.leafAt(off, keysize, byte(val)) {
				return &ln.Kids[0], nil
			}
			cur = &ln.Kids[0]
			off += keysize
		}
		return nil, ErrKeyTooLong
	}

	for {
		idx := h.arena.AllocSpan()
		sp := h.arena.Span(idx)
		n := 0
		terminal := false
		for n < arena.SpanBytes {
			b := byteAt(key, off+n)
			sp.Bytes[n] = b
			n++
			if b == 0 {
				terminal = true
				break
			}
		}
		sp.Count = uint8(n)
		sp.Terminal = terminal
		*cur = arena.PackSlot(arena.TagSpan, idx)
		h.cursor.push(*cur, off, 0, kindPlain)
		if terminal {
			return &sp.Child, nil
		}
		cur = &sp.Child
		off += n
	}
}
