package arena

import "testing"

func TestPackSlotRoundTrip(t *testing.T) {
	for _, tag := range []Tag{TagRadix, TagLinear1, TagLinear2, TagLinear4, TagLinear8, TagLinear16, TagLinear32, TagSpan} {
		for _, idx := range []int32{0, 1, 7, 1 << 20} {
			s := PackSlot(tag, idx)
			if SlotEmpty(s) {
				t.Fatalf("PackSlot(%v, %d) produced an empty slot", tag, idx)
			}
			if got := SlotTag(s); got != tag {
				t.Fatalf("SlotTag = %v, want %v", got, tag)
			}
			if got := SlotIndex(s); got != idx {
				t.Fatalf("SlotIndex = %d, want %d", got, idx)
			}
		}
	}
}

func TestZeroSlotIsEmpty(t *testing.T) {
	if !SlotEmpty(0) {
		t.Fatalf("zero slot should be empty")
	}
}

func TestAllocReusesFreedIndex(t *testing.T) {
	a := New()
	i1 := a.AllocLinear1()
	a.Linear1(i1).Keys[0] = 42
	a.FreeLinear1(i1)

	i2 := a.AllocLinear1()
	if i2 != i1 {
		t.Fatalf("expected reuse of freed index %d, got %d", i1, i2)
	}
	if got := a.Linear1(i2).Keys[0]; got != 0 {
		t.Fatalf("reused node not zeroed: Keys[0] = %d", got)
	}

	stats := a.Stats()
	if stats.Allocations != 1 || stats.Reuses != 1 {
		t.Fatalf("stats = %+v, want 1 allocation and 1 reuse", stats)
	}
}

func TestLinearViewAliasesBackingStorage(t *testing.T) {
	a := New()
	idx := a.AllocLinear4()
	keys, kids, count, cap := a.LinearView(TagLinear4, idx)
	if cap != 4 {
		t.Fatalf("cap = %d, want 4", cap)
	}
	keys[0] = 7
	kids[0] = 9
	*count = 1

	n := a.Linear4(idx)
	if n.Keys[0] != 7 || n.Kids[0] != 9 || n.Count != 1 {
		t.Fatalf("LinearView did not alias backing node: %+v", n)
	}
}

func TestBoundedWorkingSetDoesNotGrowIndefinitely(t *testing.T) {
	a := New()
	for i := 0; i < 10000; i++ {
		idx := a.AllocLinear1()
		a.FreeLinear1(idx)
	}
	stats := a.Stats()
	if stats.Allocations > 1 {
		t.Fatalf("expected a single backing allocation under steady insert/delete churn, got %d", stats.Allocations)
	}
}

func TestLinearFitTag(t *testing.T) {
	cases := []struct {
		n    int
		want Tag
	}{
		{0, TagLinear1}, {1, TagLinear1}, {2, TagLinear2}, {3, TagLinear4},
		{4, TagLinear4}, {5, TagLinear8}, {8, TagLinear8}, {9, TagLinear16},
		{16, TagLinear16}, {17, TagLinear32}, {32, TagLinear32},
	}
	for _, c := range cases {
		if got := LinearFitTag(c.n); got != c.want {
			t.Fatalf("LinearFitTag(%d) = %v, want %v", c.n, got, c.want)
		}
	}
}
