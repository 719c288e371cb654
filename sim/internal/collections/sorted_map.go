package collections

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// SortedMap is a map keyed by integers that iterates in increasing key
// order. It wraps a gods red-black tree map with typed accessors.
type SortedMap[V any] struct {
	tree *treemap.Map
}

// NewSortedMap returns an empty SortedMap.
func NewSortedMap[V any]() *SortedMap[V] {
	return &SortedMap[V]{tree: treemap.NewWithIntComparator()}
}

// Len returns the number of entries.
func (m *SortedMap[V]) Len() int { return m.tree.Size() }

// Put inserts or replaces the value for key.
func (m *SortedMap[V]) Put(key int, value V) { m.tree.Put(key, value) }

// Get returns the value for key.
func (m *SortedMap[V]) Get(key int) (V, bool) {
	v, ok := m.tree.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Has reports whether key is present.
func (m *SortedMap[V]) Has(key int) bool {
	_, ok := m.tree.Get(key)
	return ok
}

// Remove deletes key.
func (m *SortedMap[V]) Remove(key int) { m.tree.Remove(key) }

// Keys returns the keys in increasing order.
func (m *SortedMap[V]) Keys() []int {
	out := make([]int, 0, m.tree.Size())
	it := m.tree.Iterator()
	for it.Next() {
		out = append(out, it.Key().(int))
	}
	return out
}

// Each calls fn for every entry in increasing key order until fn returns
// false.
func (m *SortedMap[V]) Each(fn func(key int, value V) bool) {
	it := m.tree.Iterator()
	for it.Next() {
		if !fn(it.Key().(int), it.Value().(V)) {
			return
		}
	}
}
