// Package judy implements an ordered associative container: a digital
// trie mapping keys to fixed-width value cells, optimized for sparse
// populations across a wide key space. It supports a byte-string mode
// (variable-length keys terminated by an implicit zero byte) and a
// fixed-integer mode (a fixed number of machine-word digits per key),
// preserving key order for forward and backward traversal.
//
// A Handle is not safe for concurrent mutation. Concurrent read-only
// traversal is supported through Clone, which produces a handle sharing
// the node graph but unable to allocate; every clone needs its own
// traversal cursor, which Clone provides. A clone must not outlive the
// handle it was cloned from — Close on the original invalidates every
// clone, matching the source allocator's ownership model.
package judy

import "github.com/TomTonic/judy/internal/arena"

// Cell is a pointer to a leaf slot. The engine guarantees the slot
// exists and is addressable once returned; it never writes to a cell
// itself; writing a non-zero value is how a caller marks a key present.
// A zero cell value means absent.
type Cell = *uint64

// Handle is one trie. Its zero value is not usable; construct one with
// Open.
type Handle struct {
	arena *arena.Arena

	root uint64

	// depth is 0 for byte-string mode, or the fixed digit count D for
	// fixed-integer mode.
	depth int
	// maxBytes is the byte-string maximum (user max + 1, for the
	// implicit terminator) or depth*arena.WordSize in fixed mode.
	maxBytes int

	cursor cursor

	readOnly bool
	closed   bool

	metrics *Metrics
}

// Open returns a new, empty trie handle.
//
// depth == 0 selects byte-string mode: keys are any byte sequence of at
// most maxKeyBytes bytes (an implicit zero terminator is reserved, so
// byte-string keys must not contain a zero byte).
//
// depth > 0 selects fixed-integer mode: every key is exactly depth
// arena.WordSize-byte big-endian digits (see EncodeDigits). maxKeyBytes
// is ignored in this mode.
func Open(maxKeyBytes, depth int) *Handle {
	h := &Handle{
		arena: arena.New(),
		depth: depth,
	}
	if depth > 0 {
		h.maxBytes = depth * arena.WordSize
	} else {
		h.maxBytes = maxKeyBytes + 1
	}
	h.cursor = newCursor(h.maxBytes)
	h.metrics = newMetrics()
	return h
}

// Close releases the trie's arena. Clones sharing this handle's arena
// must not be used afterward.
func (h *Handle) Close() {
	h.arena = nil
	h.closed = true
}

// Clone returns a read-only handle sharing this trie's node graph with
// an independent traversal cursor, for concurrent read-only traversal.
// Mutating calls on the returned handle fail with ErrReadOnly.
func (h *Handle) Clone() *Handle {
	clone := &Handle{
		arena:    h.arena,
		root:     h.root,
		depth:    h.depth,
		maxBytes: h.maxBytes,
		cursor:   newCursor(h.maxBytes),
		readOnly: true,
		metrics:  h.metrics,
	}
	return clone
}

// Data returns an n-byte scratch region owned by the arena, for callers
// that need out-of-band storage with the trie's lifetime.
func (h *Handle) Data(n int) []byte {
	if h.closed {
		return nil
	}
	return h.arena.Data(n)
}

// Stats exposes the backing arena's occupancy, primarily for tests and
// for the prometheus collectors in Collectors.
func (h *Handle) Stats() arena.Stats {
	if h.closed {
		return arena.Stats{}
	}
	return h.arena.Stats()
}

func (h *Handle) checkKey(key []byte) error {
	if h.closed {
		return ErrClosed
	}
	if h.depth > 0 {
		if len(key) != h.maxBytes {
			return ErrKeyTooLong
		}
		return nil
	}
	if len(key) > h.maxBytes-1 {
		return ErrKeyTooLong
	}
	for _, b := range key {
		if b == 0 {
			return ErrEmbeddedZero
		}
	}
	return nil
}
