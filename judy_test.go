package judy

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/TomTonic/judy/internal/arena"
)

func mustCell(t *testing.T, h *Handle, key []byte) Cell {
	t.Helper()
	c, err := h.Cell(key)
	if err != nil {
		t.Fatalf("Cell(%q): %v", key, err)
	}
	return c
}

func collectKeys(t *testing.T, h *Handle, maxBytes int) []string {
	t.Helper()
	var got []string
	buf := make([]byte, maxBytes)
	for cell := h.First(); cell != nil; cell = h.Nxt() {
		if *cell == 0 {
			t.Fatalf("traversed a cell that was never written")
		}
		n := h.Key(buf)
		got = append(got, string(buf[:n]))
	}
	return got
}

func TestBasicInsertTraverseDelete(t *testing.T) {
	h := Open(32, 0)
	defer h.Close()

	words := []string{"bob", "alice", "carol"}
	for i, w := range words {
		cell := mustCell(t, h, []byte(w))
		*cell = uint64(i + 1)
	}

	got := collectKeys(t, h, 32)
	want := []string{"alice", "bob", "carol"}
	if !equalStrings(got, want) {
		t.Fatalf("traversal = %v, want %v", got, want)
	}

	cell, err := h.Slot([]byte("bob"))
	if err != nil || cell == nil || *cell != 1 {
		t.Fatalf("Slot(bob) = %v, %v, want cell holding 1", cell, err)
	}

	pred, err := h.Del()
	if err != nil {
		t.Fatalf("Del: %v", err)
	}
	if pred == nil || *pred != uint64(2) {
		t.Fatalf("Del predecessor = %v, want cell for alice", pred)
	}

	got = collectKeys(t, h, 32)
	want = []string{"alice", "carol"}
	if !equalStrings(got, want) {
		t.Fatalf("traversal after delete = %v, want %v", got, want)
	}
}

func TestLinearPromotionChain(t *testing.T) {
	h := Open(8, 0)
	defer h.Close()

	// The first key lands in a span at the root; the second splits it
	// into a linear-1 node, and each later one-byte key lands in that
	// same root linear node: the second, third and fifth keys promote it
	// through 2 and 4 up to linear-8, which still holds all six.
	keys := []string{"a", "b", "c", "d", "e", "f"}
	for i, k := range keys {
		cell := mustCell(t, h, []byte(k))
		*cell = uint64(i + 1)
	}
	got := collectKeys(t, h, 8)
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	if !equalStrings(got, sorted) {
		t.Fatalf("traversal = %v, want %v", got, sorted)
	}
	stats := h.Stats()
	if stats.LiveByTag[arena.TagRadix] != 0 {
		t.Fatalf("expected no radix split yet at 6 keys, live radix = %d", stats.LiveByTag[arena.TagRadix])
	}
}

func TestLinearToRadixSplit(t *testing.T) {
	// Fixed-integer mode avoids the byte-string mode's embedded-zero
	// restriction, which a raw 2-byte key space would otherwise trip for
	// every i < 256.
	h := Open(0, 1)
	defer h.Close()

	const n = 300
	var inserted []string
	keyOf := func(i int) []byte { return EncodeDigits(uint64(i)) }
	for i := 0; i < n; i++ {
		k := keyOf(i)
		cell := mustCell(t, h, k)
		*cell = uint64(i + 1)
		inserted = append(inserted, string(k))
	}
	sort.Strings(inserted)

	got := collectKeys(t, h, 8)
	if !equalStrings(got, inserted) {
		t.Fatalf("post-split traversal mismatch: got %d keys, want %d", len(got), len(inserted))
	}

	cell, err := h.Strt(keyOf(150))
	if err != nil {
		t.Fatalf("Strt: %v", err)
	}
	if cell == nil {
		t.Fatalf("Strt(150) found nothing")
	}

	for i := 0; i < n; i += 2 {
		if _, err := h.Slot(keyOf(i)); err != nil {
			t.Fatalf("Slot: %v", err)
		}
		if _, err := h.Del(); err != nil {
			t.Fatalf("Del: %v", err)
		}
	}
	got = collectKeys(t, h, 8)
	if len(got) != n/2 {
		t.Fatalf("after deleting half, got %d keys, want %d", len(got), n/2)
	}
}

func TestSpanChainingAndSplit(t *testing.T) {
	h := Open(64, 0)
	defer h.Close()

	shared := "this-is-a-long-shared-prefix-well-past-one-span-node"
	a := shared + "-alpha"
	b := shared + "-beta"

	ca := mustCell(t, h, []byte(a))
	*ca = 1
	cb := mustCell(t, h, []byte(b))
	*cb = 2

	got := collectKeys(t, h, 64)
	want := []string{a, b}
	sort.Strings(want)
	if !equalStrings(got, want) {
		t.Fatalf("traversal = %v, want %v", got, want)
	}
}

// TestSpanSplitPreservesAlignedFirstSpan covers a divergence that lands
// inside a full 28-byte first span whose Count isn't a multiple of the
// 8-byte word size: spanSplit's last linear-1 digit would otherwise run
// four bytes past the span's real content, zero-padding over key bytes
// that actually live under the span's child instead of borrowing them,
// making the longer key unreachable after the split.
func TestSpanSplitPreservesAlignedFirstSpan(t *testing.T) {
	h := Open(64, 0)
	defer h.Close()

	key1 := []byte(strings.Repeat("A", 40))
	key2 := []byte(strings.Repeat("A", 5) + "B" + strings.Repeat("A", 34))

	c1 := mustCell(t, h, key1)
	*c1 = 1
	c2 := mustCell(t, h, key2)
	*c2 = 2

	s1, err := h.Slot(key1)
	if err != nil {
		t.Fatalf("Slot(key1): %v", err)
	}
	if s1 == nil || *s1 != 1 {
		t.Fatalf("key1 lost after spanSplit: slot = %v", s1)
	}

	s2, err := h.Slot(key2)
	if err != nil {
		t.Fatalf("Slot(key2): %v", err)
	}
	if s2 == nil || *s2 != 2 {
		t.Fatalf("key2 lost after spanSplit: slot = %v", s2)
	}

	got := collectKeys(t, h, 64)
	want := []string{string(key1), string(key2)}
	sort.Strings(want)
	if !equalStrings(got, want) {
		t.Fatalf("traversal = %v, want %v", got, want)
	}
}

func TestFixedIntegerModeDuplicateIdempotent(t *testing.T) {
	h := Open(0, 2)
	defer h.Close()

	key := EncodeDigits(7, 9)
	c1 := mustCell(t, h, key)
	*c1 = 42
	c2 := mustCell(t, h, key)
	if c1 != c2 {
		t.Fatalf("re-inserting the same fixed-mode key returned a different cell")
	}
	if *c2 != 42 {
		t.Fatalf("cell value clobbered by duplicate insert: %d", *c2)
	}
}

func TestRandomInsertDeleteReinsertReusesArena(t *testing.T) {
	h := Open(8, 0)
	defer h.Close()

	rng := rand.New(rand.NewSource(1))
	randByte := func() byte { return byte(1 + rng.Intn(255)) } // never 0: byte-string mode reserves it
	keys := make(map[string]uint64)
	for len(keys) < 500 {
		k := string([]byte{randByte(), randByte(), randByte()})
		keys[k] = uint64(len(keys) + 1)
	}

	for k, v := range keys {
		cell := mustCell(t, h, []byte(k))
		*cell = v
	}
	for k := range keys {
		if _, err := h.Slot([]byte(k)); err != nil {
			t.Fatalf("Slot: %v", err)
		}
		if _, err := h.Del(); err != nil {
			t.Fatalf("Del: %v", err)
		}
	}
	if got := collectKeys(t, h, 8); len(got) != 0 {
		t.Fatalf("trie not empty after deleting every key: %d left", len(got))
	}

	before := h.Stats()
	for k, v := range keys {
		cell := mustCell(t, h, []byte(k))
		*cell = v
	}
	after := h.Stats()
	if after.Allocations > before.Allocations {
		t.Fatalf("reinsertion grew the arena instead of reusing freed nodes: before=%d after=%d",
			before.Allocations, after.Allocations)
	}
}

// TestKeyGaugeCountsSiblingLeaves guards against under-counting a new key
// that terminates by adding a leaf entry to an already-existing sibling
// node (e.g. inserting "a" after "ab" lands its terminator inside "ab"'s
// existing linear-1 node) rather than by allocating a fresh node chain.
func TestKeyGaugeCountsSiblingLeaves(t *testing.T) {
	h := Open(8, 0)
	defer h.Close()

	cab := mustCell(t, h, []byte("ab"))
	*cab = 1
	if got := testutil.ToFloat64(h.metrics.keys); got != 1 {
		t.Fatalf("keys gauge after inserting \"ab\" = %v, want 1", got)
	}

	ca := mustCell(t, h, []byte("a"))
	*ca = 2
	if got := testutil.ToFloat64(h.metrics.keys); got != 2 {
		t.Fatalf("keys gauge after inserting \"a\" = %v, want 2", got)
	}

	got := collectKeys(t, h, 8)
	want := []string{"a", "ab"}
	if !equalStrings(got, want) {
		t.Fatalf("traversal = %v, want %v", got, want)
	}

	if _, err := h.Slot([]byte("a")); err != nil {
		t.Fatalf("Slot: %v", err)
	}
	if _, err := h.Del(); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if got := testutil.ToFloat64(h.metrics.keys); got != 1 {
		t.Fatalf("keys gauge after deleting \"a\" = %v, want 1", got)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
