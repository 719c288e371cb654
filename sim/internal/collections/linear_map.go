// Package collections holds the small keyed containers used by the resource
// graph and the linear solver.
package collections

import (
	"cmp"
	"slices"
)

// LinearMap is an unsorted map keyed by small integers, stored as parallel
// slices and searched linearly. It is meant for a handful of entries (the
// resources a single converter touches) where a hash map costs more than a
// scan, and its iteration order is the insertion order.
type LinearMap[V any] struct {
	keys   []int
	values []V
}

// NewLinearMap returns an empty map with room for capacity entries.
func NewLinearMap[V any](capacity int) *LinearMap[V] {
	return &LinearMap[V]{keys: make([]int, 0, capacity), values: make([]V, 0, capacity)}
}

// Len returns the number of entries.
func (m *LinearMap[V]) Len() int { return len(m.keys) }

func (m *LinearMap[V]) find(key int) int {
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Get returns the value for key.
func (m *LinearMap[V]) Get(key int) (V, bool) {
	if i := m.find(key); i >= 0 {
		return m.values[i], true
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (m *LinearMap[V]) Has(key int) bool { return m.find(key) >= 0 }

// Put inserts or replaces the value for key.
func (m *LinearMap[V]) Put(key int, value V) {
	if i := m.find(key); i >= 0 {
		m.values[i] = value
		return
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Remove deletes key, swapping the last entry into its slot.
func (m *LinearMap[V]) Remove(key int) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}
	last := len(m.keys) - 1
	m.keys[i], m.values[i] = m.keys[last], m.values[last]
	m.keys, m.values = m.keys[:last], m.values[:last]
	return true
}

// Keys returns a copy of the keys in insertion order.
func (m *LinearMap[V]) Keys() []int {
	return slices.Clone(m.keys)
}

// SortedKeys returns the keys in increasing order.
func (m *LinearMap[V]) SortedKeys() []int {
	k := slices.Clone(m.keys)
	slices.Sort(k)
	return k
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *LinearMap[V]) Each(fn func(key int, value V) bool) {
	for i, k := range m.keys {
		if !fn(k, m.values[i]) {
			return
		}
	}
}

// SameKeys reports whether both maps hold exactly the same key set.
func (m *LinearMap[V]) SameKeys(o *LinearMap[V]) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.keys {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// EqualFunc reports whether both maps hold the same keys with values equal
// under eq.
func (m *LinearMap[V]) EqualFunc(o *LinearMap[V], eq func(a, b V) bool) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.keys {
		v, ok := o.Get(k)
		if !ok || !eq(m.values[i], v) {
			return false
		}
	}
	return true
}

// LinearMapOf copies a Go map into a LinearMap with keys in increasing order,
// which keeps iteration deterministic.
func LinearMapOf[V any](src map[int]V) *LinearMap[V] {
	keys := make([]int, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[int])
	m := NewLinearMap[V](len(keys))
	for _, k := range keys {
		m.Put(k, src[k])
	}
	return m
}
