package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSet_SetGetClear(t *testing.T) {
	b := New(130)
	for _, i := range []int{0, 63, 64, 129} {
		b.Set(i)
		assert.True(t, b.Get(i), "index %d", i)
	}
	assert.Equal(t, 4, b.Count())
	b.Clear(64)
	assert.False(t, b.Get(64))
	assert.Equal(t, []int{0, 63, 129}, b.Indices())
}

func TestBitSet_OutOfRangePanics(t *testing.T) {
	b := New(3)
	assert.Panics(t, func() { b.Set(3) })
	assert.Panics(t, func() { b.Get(-1) })
	assert.Panics(t, func() { New(-1) })
}

func TestBitSet_SetAllTrimsPadding(t *testing.T) {
	b := New(70)
	b.SetAll()
	assert.Equal(t, 70, b.Count())
	assert.True(t, b.Equal(Full(70)))
}

func TestBitSet_Algebra(t *testing.T) {
	a := FromIndices(100, 1, 2, 3, 70)
	b := FromIndices(100, 2, 3, 4, 99)

	and := a.Clone()
	and.And(b)
	assert.Equal(t, []int{2, 3}, and.Indices())

	or := a.Clone()
	or.Or(b)
	assert.Equal(t, []int{1, 2, 3, 4, 70, 99}, or.Indices())

	diff := a.Clone()
	diff.AndNot(b)
	assert.Equal(t, []int{1, 70}, diff.Indices())

	assert.True(t, a.Intersects(b))
	assert.False(t, diff.Intersects(b))
	assert.Panics(t, func() { a.And(New(10)) })
}

func TestBitSet_NextSetAndIteration(t *testing.T) {
	b := FromIndices(200, 5, 64, 128, 199)
	assert.Equal(t, 5, b.NextSet(0))
	assert.Equal(t, 64, b.NextSet(6))
	assert.Equal(t, 128, b.NextSet(65))
	assert.Equal(t, 199, b.NextSet(129))
	assert.Equal(t, -1, b.NextSet(200))

	var seen []int
	for i := range b.All() {
		seen = append(seen, i)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{5, 64}, seen)
	assert.Equal(t, "{5 64 128 199}", b.String())
}

func TestBitSet_EmptyAndZeroValue(t *testing.T) {
	var z BitSet
	assert.True(t, z.IsEmpty())
	assert.Equal(t, 0, z.Len())
	assert.Equal(t, -1, z.NextSet(0))
	require.True(t, New(0).Equal(&z))
}

func TestBitMatrix_RowViewSharesStorage(t *testing.T) {
	m := NewMatrix(3, 70)
	m.Row(1).Set(65)
	assert.True(t, m.Get(1, 65))
	assert.False(t, m.Get(0, 65))
	assert.False(t, m.Get(2, 65))

	m.SetRow(2, FromIndices(70, 0, 69))
	assert.Equal(t, []int{0, 69}, m.Row(2).Indices())

	m.ClearColumn(69)
	assert.False(t, m.Get(2, 69))
	assert.Equal(t, []int{1}, m.Column(65).Indices())
}

func TestBitMatrix_FillUpperDiagonal(t *testing.T) {
	m := NewMatrix(4, 4)
	m.FillUpperDiagonal()
	assert.Equal(t, ".111\n..11\n...1\n....\n", m.String())
	assert.Panics(t, func() { NewMatrix(2, 3).FillUpperDiagonal() })
}

func TestBitMatrix_RemoveUnequalColumns(t *testing.T) {
	// columns 0, 2 and 3 are identical; column 1 differs in row 1.
	m := NewMatrix(3, 4)
	for _, c := range []int{0, 1, 2, 3} {
		m.Set(0, c)
	}
	m.Set(1, 1)
	m.Set(2, 0)
	m.Set(2, 2)
	m.Set(2, 3)

	cand := Full(4)
	m.RemoveUnequalColumns(0, cand)
	assert.Equal(t, []int{0, 2, 3}, cand.Indices())
}

func TestBitMatrix_RemoveUnequalRows(t *testing.T) {
	adj := NewMatrix(4, 3)
	adj.SetRow(0, FromIndices(3, 0, 2))
	adj.SetRow(1, FromIndices(3, 1))
	adj.SetRow(2, FromIndices(3, 0, 2))
	adj.SetRow(3, FromIndices(3, 0, 2))

	cand := NewMatrix(4, 4)
	cand.FillUpperDiagonal()
	cand.RemoveUnequalRows(adj)

	assert.Equal(t, []int{2, 3}, cand.Row(0).Indices())
	assert.True(t, cand.Row(1).IsEmpty())
	assert.Equal(t, []int{3}, cand.Row(2).Indices())
	assert.True(t, cand.Row(3).IsEmpty())
}

func TestBitMatrix_CloneIsIndependent(t *testing.T) {
	m := NewMatrix(2, 2)
	m.Set(0, 1)
	c := m.Clone()
	require.True(t, c.Equal(m))
	c.Set(1, 0)
	assert.False(t, m.Get(1, 0))
	assert.False(t, c.Equal(m))
}
