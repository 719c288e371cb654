package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearMap_PutGetRemove(t *testing.T) {
	m := NewLinearMap[string](2)
	m.Put(7, "seven")
	m.Put(3, "three")
	m.Put(7, "SEVEN")

	v, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "SEVEN", v)
	assert.Equal(t, []int{7, 3}, m.Keys())
	assert.Equal(t, []int{3, 7}, m.SortedKeys())

	assert.True(t, m.Remove(7))
	assert.False(t, m.Remove(7))
	assert.Equal(t, 1, m.Len())
	_, ok = m.Get(7)
	assert.False(t, ok)
}

func TestLinearMap_KeyAndValueEquality(t *testing.T) {
	a := LinearMapOf(map[int]float64{1: 1.5, 2: 2.5})
	b := LinearMapOf(map[int]float64{2: 9, 1: 1.5})
	c := LinearMapOf(map[int]float64{1: 1.5})

	assert.Equal(t, []int{1, 2}, a.Keys())
	assert.True(t, a.SameKeys(b))
	assert.False(t, a.SameKeys(c))
	eq := func(x, y float64) bool { return x == y }
	assert.False(t, a.EqualFunc(b, eq))
	b.Put(2, 2.5)
	assert.True(t, a.EqualFunc(b, eq))
}

func TestLinearMap_EachStopsEarly(t *testing.T) {
	m := LinearMapOf(map[int]int{1: 10, 2: 20, 3: 30})
	var visited []int
	m.Each(func(k, _ int) bool {
		visited = append(visited, k)
		return k < 2
	})
	assert.Equal(t, []int{1, 2}, visited)
}

func TestSortedMap_OrderedIteration(t *testing.T) {
	m := NewSortedMap[float64]()
	m.Put(9, 0.9)
	m.Put(1, 0.1)
	m.Put(5, 0.5)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []int{1, 5, 9}, m.Keys())
	assert.True(t, m.Has(5))

	var sum float64
	m.Each(func(_ int, v float64) bool {
		sum += v
		return true
	})
	assert.InDelta(t, 1.5, sum, 1e-12)

	m.Remove(5)
	_, ok := m.Get(5)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 9}, m.Keys())
}
