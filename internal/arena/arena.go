// Package arena implements the slice-backed node allocator that backs
// the judy trie engine. It owns the eight node layouts (radix, six linear
// sizes, span) and tags every child reference with the kind of node it
// addresses.
//
// A tagged reference never holds a raw address: the low 3 bits are the
// Tag, the remaining bits are a 1-based index into the per-kind slice
// that actually stores the node. This keeps the Go garbage collector in
// full control of the backing memory (real pointer tagging would hide
// live objects from the GC) while preserving the "type lives in the low
// bits of the reference" shape of the source design.
package arena

// Tag identifies the node layout a slot addresses. It occupies the low 3
// bits of every non-zero slot value.
type Tag uint8

const (
	TagRadix Tag = iota
	TagLinear1
	TagLinear2
	TagLinear4
	TagLinear8
	TagLinear16
	TagLinear32
	TagSpan
)

func (t Tag) String() string {
	switch t {
	case TagRadix:
		return "radix"
	case TagLinear1:
		return "linear1"
	case TagLinear2:
		return "linear2"
	case TagLinear4:
		return "linear4"
	case TagLinear8:
		return "linear8"
	case TagLinear16:
		return "linear16"
	case TagLinear32:
		return "linear32"
	case TagSpan:
		return "span"
	}
	return "unknown"
}

const (
	// WordSize is the digit width W. The canonical configuration is 8
	// bytes, matching a 64-bit machine word.
	WordSize = 8
	// SpanBytes is S, the number of contiguous key bytes a span node
	// can hold inline before it needs a child.
	SpanBytes = 28
	// SegmentBytes is the nominal size of one arena segment. Nothing in
	// this package uses it: nodes live in growable per-kind slices with
	// no segment or pre-allocation chunk.
	SegmentBytes = 65536

	tagBits = 3
	tagMask = uint64(1)<<tagBits - 1
)

// PackSlot encodes a reference to the idx'th (0-based) node of the given
// tag. A zero slot means "empty"; packing idx=0 therefore stores 1 in the
// index field, never 0.
func PackSlot(tag Tag, idx int32) uint64 {
	return (uint64(idx)+1)<<tagBits | uint64(tag)
}

// SlotTag extracts the node tag from a slot.
func SlotTag(s uint64) Tag { return Tag(s & tagMask) }

// SlotIndex extracts the 0-based arena index from a slot. Only valid when
// SlotEmpty(s) is false.
func SlotIndex(s uint64) int32 { return int32(s>>tagBits) - 1 }

// SlotEmpty reports whether a slot is absent.
func SlotEmpty(s uint64) bool { return s == 0 }

// RadixNode is a 16-slot table. A pair of RadixNodes (outer indexed by
// the high nibble of a key byte, inner by the low nibble) fans out 256
// ways per byte consumed.
type RadixNode struct {
	Child [16]uint64
	Count uint8
}

// LinearCap returns the slot capacity for a linear node tag, or 0 if tag
// does not name a linear node.
func LinearCap(tag Tag) int {
	switch tag {
	case TagLinear1:
		return 1
	case TagLinear2:
		return 2
	case TagLinear4:
		return 4
	case TagLinear8:
		return 8
	case TagLinear16:
		return 16
	case TagLinear32:
		return 32
	}
	return 0
}

// NextLinearTag returns the next larger linear size class used when
// promoting a full node, saturating at TagLinear32.
func NextLinearTag(tag Tag) Tag {
	switch tag {
	case TagLinear1:
		return TagLinear2
	case TagLinear2:
		return TagLinear4
	case TagLinear4:
		return TagLinear8
	case TagLinear8:
		return TagLinear16
	case TagLinear16:
		return TagLinear32
	}
	return TagLinear32
}

// LinearFitTag returns the smallest linear size class with capacity >= n.
func LinearFitTag(n int) Tag {
	switch {
	case n <= 1:
		return TagLinear1
	case n <= 2:
		return TagLinear2
	case n <= 4:
		return TagLinear4
	case n <= 8:
		return TagLinear8
	case n <= 16:
		return TagLinear16
	default:
		return TagLinear32
	}
}

type Linear1Node struct {
	Keys  [1]uint64
	Kids  [1]uint64
	Count uint8
}

type Linear2Node struct {
	Keys  [2]uint64
	Kids  [2]uint64
	Count uint8
}

type Linear4Node struct {
	Keys  [4]uint64
	Kids  [4]uint64
	Count uint8
}

type Linear8Node struct {
	Keys  [8]uint64
	Kids  [8]uint64
	Count uint8
}

type Linear16Node struct {
	Keys  [16]uint64
	Kids  [16]uint64
	Count uint8
}

type Linear32Node struct {
	Keys  [32]uint64
	Kids  [32]uint64
	Count uint8
}

// SpanNode stores up to SpanBytes contiguous key bytes plus one child
// slot. Terminal marks a span whose stored run ends in the byte-string
// terminator, making Child a cell rather than a further node reference.
type SpanNode struct {
	Bytes    [SpanBytes]byte
	Count    uint8
	Terminal bool
	Child    uint64
}

// Stats is a point-in-time snapshot of arena occupancy, used both by
// tests (property 7: bounded working-set reuse) and by the judy package's
// prometheus gauges.
type Stats struct {
	Allocations int64
	Reuses      int64
	DataBytes   int64

	LiveByTag map[Tag]int
}

// Arena owns every node ever created for one trie (and its clones, which
// share the same Arena). Nodes are never moved once allocated: growth
// only appends to the per-kind slices, so an index handed out by an
// AllocX call stays valid until the matching FreeX call recycles it.
type Arena struct {
	radix []RadixNode
	lin1  []Linear1Node
	lin2  []Linear2Node
	lin4  []Linear4Node
	lin8  []Linear8Node
	lin16 []Linear16Node
	lin32 []Linear32Node
	span  []SpanNode

	freeRadix []int32
	freeLin1  []int32
	freeLin2  []int32
	freeLin4  []int32
	freeLin8  []int32
	freeLin16 []int32
	freeLin32 []int32
	freeSpan  []int32

	allocCount int64
	reuseCount int64
	dataBytes  int64
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

func popFree(list *[]int32) (int32, bool) {
	n := len(*list)
	if n == 0 {
		return 0, false
	}
	idx := (*list)[n-1]
	*list = (*list)[:n-1]
	return idx, true
}

// AllocRadix returns the index of a zeroed RadixNode, reusing a freed one
// if available.
func (a *Arena) AllocRadix() int32 {
	if idx, ok := popFree(&a.freeRadix); ok {
		a.radix[idx] = RadixNode{}
		a.reuseCount++
		return idx
	}
	a.radix = append(a.radix, RadixNode{})
	a.allocCount++
	return int32(len(a.radix) - 1)
}

// FreeRadix returns a RadixNode to the reuse list.
func (a *Arena) FreeRadix(idx int32) { a.freeRadix = append(a.freeRadix, idx) }

// Radix returns a pointer to the node at idx for in-place mutation.
func (a *Arena) Radix(idx int32) *RadixNode { return &a.radix[idx] }

func (a *Arena) AllocLinear1() int32 {
	if idx, ok := popFree(&a.freeLin1); ok {
		a.lin1[idx] = Linear1Node{}
		a.reuseCount++
		return idx
	}
	a.lin1 = append(a.lin1, Linear1Node{})
	a.allocCount++
	return int32(len(a.lin1) - 1)
}
func (a *Arena) FreeLinear1(idx int32)     { a.freeLin1 = append(a.freeLin1, idx) }
func (a *Arena) Linear1(idx int32) *Linear1Node { return &a.lin1[idx] }

func (a *Arena) AllocLinear2() int32 {
	if idx, ok := popFree(&a.freeLin2); ok {
		a.lin2[idx] = Linear2Node{}
		a.reuseCount++
		return idx
	}
	a.lin2 = append(a.lin2, Linear2Node{})
	a.allocCount++
	return int32(len(a.lin2) - 1)
}
func (a *Arena) FreeLinear2(idx int32)     { a.freeLin2 = append(a.freeLin2, idx) }
func (a *Arena) Linear2(idx int32) *Linear2Node { return &a.lin2[idx] }

func (a *Arena) AllocLinear4() int32 {
	if idx, ok := popFree(&a.freeLin4); ok {
		a.lin4[idx] = Linear4Node{}
		a.reuseCount++
		return idx
	}
	a.lin4 = append(a.lin4, Linear4Node{})
	a.allocCount++
	return int32(len(a.lin4) - 1)
}
func (a *Arena) FreeLinear4(idx int32)     { a.freeLin4 = append(a.freeLin4, idx) }
func (a *Arena) Linear4(idx int32) *Linear4Node { return &a.lin4[idx] }

func (a *Arena) AllocLinear8() int32 {
	if idx, ok := popFree(&a.freeLin8); ok {
		a.lin8[idx] = Linear8Node{}
		a.reuseCount++
		return idx
	}
	a.lin8 = append(a.lin8, Linear8Node{})
	a.allocCount++
	return int32(len(a.lin8) - 1)
}
func (a *Arena) FreeLinear8(idx int32)     { a.freeLin8 = append(a.freeLin8, idx) }
func (a *Arena) Linear8(idx int32) *Linear8Node { return &a.lin8[idx] }

func (a *Arena) AllocLinear16() int32 {
	if idx, ok := popFree(&a.freeLin16); ok {
		a.lin16[idx] = Linear16Node{}
		a.reuseCount++
		return idx
	}
	a.lin16 = append(a.lin16, Linear16Node{})
	a.allocCount++
	return int32(len(a.lin16) - 1)
}
func (a *Arena) FreeLinear16(idx int32)      { a.freeLin16 = append(a.freeLin16, idx) }
func (a *Arena) Linear16(idx int32) *Linear16Node { return &a.lin16[idx] }

func (a *Arena) AllocLinear32() int32 {
	if idx, ok := popFree(&a.freeLin32); ok {
		a.lin32[idx] = Linear32Node{}
		a.reuseCount++
		return idx
	}
	a.lin32 = append(a.lin32, Linear32Node{})
	a.allocCount++
	return int32(len(a.lin32) - 1)
}
func (a *Arena) FreeLinear32(idx int32)      { a.freeLin32 = append(a.freeLin32, idx) }
func (a *Arena) Linear32(idx int32) *Linear32Node { return &a.lin32[idx] }

// AllocLinear allocates a linear node of the size class named by tag and
// returns its index. It panics if tag does not name a linear node — a
// programmer error, not a runtime condition.
func (a *Arena) AllocLinear(tag Tag) int32 {
	switch tag {
	case TagLinear1:
		return a.AllocLinear1()
	case TagLinear2:
		return a.AllocLinear2()
	case TagLinear4:
		return a.AllocLinear4()
	case TagLinear8:
		return a.AllocLinear8()
	case TagLinear16:
		return a.AllocLinear16()
	case TagLinear32:
		return a.AllocLinear32()
	}
	panic("arena: AllocLinear called with non-linear tag " + tag.String())
}

// FreeLinear recycles a linear node of the size class named by tag.
func (a *Arena) FreeLinear(tag Tag, idx int32) {
	switch tag {
	case TagLinear1:
		a.FreeLinear1(idx)
	case TagLinear2:
		a.FreeLinear2(idx)
	case TagLinear4:
		a.FreeLinear4(idx)
	case TagLinear8:
		a.FreeLinear8(idx)
	case TagLinear16:
		a.FreeLinear16(idx)
	case TagLinear32:
		a.FreeLinear32(idx)
	default:
		panic("arena: FreeLinear called with non-linear tag " + tag.String())
	}
}

// LinearView returns slice views over a linear node's Keys/Kids arrays
// (aliasing the arena's backing storage, so writes through the returned
// slices persist) together with a pointer to its Count field and its
// capacity. This is how insert/lookup/traversal share one code path
// across all six linear size classes instead of repeating it six times.
func (a *Arena) LinearView(tag Tag, idx int32) (keys, kids []uint64, count *uint8, cap int) {
	switch tag {
	case TagLinear1:
		n := a.Linear1(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 1
	case TagLinear2:
		n := a.Linear2(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 2
	case TagLinear4:
		n := a.Linear4(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 4
	case TagLinear8:
		n := a.Linear8(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 8
	case TagLinear16:
		n := a.Linear16(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 16
	case TagLinear32:
		n := a.Linear32(idx)
		return n.Keys[:], n.Kids[:], &n.Count, 32
	}
	panic("arena: LinearView called with non-linear tag " + tag.String())
}

func (a *Arena) AllocSpan() int32 {
	if idx, ok := popFree(&a.freeSpan); ok {
		a.span[idx] = SpanNode{}
		a.reuseCount++
		return idx
	}
	a.span = append(a.span, SpanNode{})
	a.allocCount++
	return int32(len(a.span) - 1)
}
func (a *Arena) FreeSpan(idx int32)    { a.freeSpan = append(a.freeSpan, idx) }
func (a *Arena) Span(idx int32) *SpanNode { return &a.span[idx] }

// Data returns a scratch byte slice owned by the arena's bookkeeping but
// outside the node reuse lists, for callers (e.g. an embedding
// application, through Handle.Data) that need out-of-band storage with the same lifetime as
// the trie. Mirrors judy_data in the source: repeated large calls are not
// pooled, matching spec.md's documented (and, under Go's GC, harmless)
// quirk that Data allocations are reclaimed only when the arena itself is
// no longer referenced, not via any reuse list.
func (a *Arena) Data(n int) []byte {
	a.dataBytes += int64(n)
	return make([]byte, n)
}

// Stats reports a snapshot of arena occupancy.
func (a *Arena) Stats() Stats {
	return Stats{
		Allocations: a.allocCount,
		Reuses:      a.reuseCount,
		DataBytes:   a.dataBytes,
		LiveByTag: map[Tag]int{
			TagRadix:    len(a.radix) - len(a.freeRadix),
			TagLinear1:  len(a.lin1) - len(a.freeLin1),
			TagLinear2:  len(a.lin2) - len(a.freeLin2),
			TagLinear4:  len(a.lin4) - len(a.freeLin4),
			TagLinear8:  len(a.lin8) - len(a.freeLin8),
			TagLinear16: len(a.lin16) - len(a.freeLin16),
			TagLinear32: len(a.lin32) - len(a.freeLin32),
			TagSpan:     len(a.span) - len(a.freeSpan),
		},
	}
}
