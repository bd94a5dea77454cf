// Package multimap provides a multi-map from Keys to a set of values,
// backed by a judy trie instead of a linear scan: ContainsKey, PutValue,
// and RemoveValue are O(key length) rather than O(map size), and
// GetValuesBetween*/GetValuesFrom*/GetValuesTo* walk the trie in key
// order instead of filtering every entry.
//
// Concurrency: all exported methods are safe for concurrent use by
// multiple goroutines.
package multimap

import (
	"sync"

	set3 "github.com/TomTonic/Set3"

	"github.com/TomTonic/judy"
)

// Key re-exports judy.Key so callers of this package need not import the
// engine package directly for ordinary use.
type Key = judy.Key

// FromString re-exports judy.FromString.
func FromString(s string) Key { return judy.FromString(s) }

// FromBytes re-exports judy.FromBytes.
func FromBytes(b []byte) Key { return judy.FromBytes(b) }

// MultiMap defines the behavior of a multi-map from Keys to a set of
// values. Implementations must clone Keys on insertion and return cloned
// value sets so callers cannot mutate internal state.
type MultiMap[T comparable] interface {
	PutValue(key Key, v T)
	RemoveValue(key Key, v T)
	ContainsKey(key Key) bool
	RemoveKey(key Key)
	GetValuesFor(key Key) *set3.Set3[T]
	GetAllValues() *set3.Set3[T]
	GetValuesBetweenInclusive(from, to Key) *set3.Set3[T]
	GetValuesBetweenExclusive(from, to Key) *set3.Set3[T]
	GetValuesFromInclusive(from Key) *set3.Set3[T]
	GetValuesToInclusive(to Key) *set3.Set3[T]
	GetValuesFromExclusive(from Key) *set3.Set3[T]
	GetValuesToExclusive(to Key) *set3.Set3[T]
	Size() uint64
	Keys() []Key
	Clear()
}

// New returns a new MultiMap backed by a judy trie in byte-string mode.
// maxKeyBytes bounds the length of any Key passed in.
func New[T comparable](maxKeyBytes int) MultiMap[T] {
	return &trieMultiMap[T]{
		h:       judy.Open(maxKeyBytes, 0),
		maxKey:  maxKeyBytes,
		sets:    make(map[uint64]*set3.Set3[T]),
		keyCopy: make(map[uint64]Key),
	}
}

// trieMultiMap stores each key's cell as an opaque handle into sets,
// rather than a real pointer: a judy Cell is a *uint64, and a Go pointer
// does not fit (or survive a GC move check) packed into a user word, so
// the set itself lives in a side table the trie is oblivious to. next is
// a monotonic allocator for those handles; 0 is reserved for "absent" by
// the trie's own empty-cell convention, so handles start at 1.
type trieMultiMap[T comparable] struct {
	mu      sync.RWMutex
	h       *judy.Handle
	maxKey  int
	sets    map[uint64]*set3.Set3[T]
	keyCopy map[uint64]Key
	next    uint64
}

func (m *trieMultiMap[T]) setFor(key Key) *set3.Set3[T] {
	cell, err := m.h.Cell(key)
	if err != nil {
		return nil
	}
	if *cell == 0 {
		m.next++
		id := m.next
		*cell = id
		m.sets[id] = set3.Empty[T]()
		m.keyCopy[id] = key.Clone()
	}
	return m.sets[*cell]
}

func (m *trieMultiMap[T]) PutValue(key Key, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFor(key).Add(v)
}

func (m *trieMultiMap[T]) RemoveValue(key Key, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cell, err := m.h.Slot(key)
	if err != nil || cell == nil || *cell == 0 {
		return
	}
	m.sets[*cell].Remove(v)
}

func (m *trieMultiMap[T]) ContainsKey(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cell, err := m.h.Slot(key)
	return err == nil && cell != nil && *cell != 0
}

func (m *trieMultiMap[T]) RemoveKey(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cell, err := m.h.Slot(key)
	if err != nil || cell == nil || *cell == 0 {
		return
	}
	id := *cell
	if _, err := m.h.Del(); err != nil {
		return
	}
	delete(m.sets, id)
	delete(m.keyCopy, id)
}

func (m *trieMultiMap[T]) GetValuesFor(key Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cell, err := m.h.Slot(key)
	if err != nil || cell == nil || *cell == 0 {
		return set3.EmptyWithCapacity[T](0)
	}
	return m.sets[*cell].Clone()
}

func (m *trieMultiMap[T]) GetAllValues() *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := set3.Empty[T]()
	m.walk(nil, nil, true, true, func(id uint64) {
		result.AddAll(m.sets[id])
	})
	return result
}

func (m *trieMultiMap[T]) GetValuesBetweenInclusive(from, to Key) *set3.Set3[T] {
	return m.collectRange(from, to, true, true)
}

func (m *trieMultiMap[T]) GetValuesBetweenExclusive(from, to Key) *set3.Set3[T] {
	return m.collectRange(from, to, false, false)
}

func (m *trieMultiMap[T]) GetValuesFromInclusive(from Key) *set3.Set3[T] {
	return m.collectRange(from, nil, true, true)
}

func (m *trieMultiMap[T]) GetValuesToInclusive(to Key) *set3.Set3[T] {
	return m.collectRange(nil, to, true, true)
}

func (m *trieMultiMap[T]) GetValuesFromExclusive(from Key) *set3.Set3[T] {
	return m.collectRange(from, nil, false, true)
}

func (m *trieMultiMap[T]) GetValuesToExclusive(to Key) *set3.Set3[T] {
	return m.collectRange(nil, to, true, false)
}

func (m *trieMultiMap[T]) collectRange(from, to Key, fromIncl, toIncl bool) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := set3.Empty[T]()
	m.walk(from, to, fromIncl, toIncl, func(id uint64) {
		result.AddAll(m.sets[id])
	})
	return result
}

// walk positions the trie's cursor at from (or the first key, if from is
// nil) and calls fn for every key's id up to and including to (or to the
// end, if to is nil), honoring the inclusive/exclusive boundary flags.
func (m *trieMultiMap[T]) walk(from, to Key, fromIncl, toIncl bool, fn func(id uint64)) {
	var cell judy.Cell
	if from == nil {
		cell = m.h.First()
	} else {
		c, err := m.h.Strt(from)
		if err != nil {
			return
		}
		cell = c
		if cell != nil && !fromIncl {
			exact, err := m.h.Slot(from)
			if err == nil && exact != nil {
				cell = m.h.Nxt()
			}
		}
	}
	for cell != nil {
		id := *cell
		key := m.keyCopy[id]
		if to != nil {
			pastInclusive := !key.LessThan(to) && !key.Equal(to)
			pastExclusive := !key.LessThan(to)
			if (toIncl && pastInclusive) || (!toIncl && pastExclusive) {
				break
			}
		}
		fn(id)
		cell = m.h.Nxt()
	}
}

func (m *trieMultiMap[T]) Size() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.sets))
}

func (m *trieMultiMap[T]) Keys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]Key, 0, len(m.keyCopy))
	buf := make([]byte, m.maxKey+1)
	cell := m.h.First()
	for cell != nil {
		n := m.h.Key(buf)
		keys = append(keys, Key(append([]byte(nil), buf[:n]...)))
		cell = m.h.Nxt()
	}
	return keys
}

func (m *trieMultiMap[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.h.Close()
	m.h = judy.Open(m.maxKey, 0)
	m.sets = make(map[uint64]*set3.Set3[T])
	m.keyCopy = make(map[uint64]Key)
	m.next = 0
}
