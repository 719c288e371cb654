package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_RowOperations(t *testing.T) {
	m := NewMatrix(2, 3)
	m.SetRow(0, []float64{1, 2, 3})
	m.SetRow(1, []float64{4, 5, 6})

	m.SwapRows(0, 1)
	assert.Equal(t, []float64{4, 5, 6}, m.Row(0))
	assert.Equal(t, []float64{1, 2, 3}, m.Row(1))

	m.ScaleRow(1, 2)
	assert.Equal(t, []float64{2, 4, 6}, m.Row(1))

	m.ScaleReduce(0, 1, 2)
	assert.Equal(t, []float64{0, -3, -6}, m.Row(0))
	assert.Equal(t, 2, m.CountNonZero(0, 3))
	assert.Equal(t, 1, m.CountNonZero(0, 2))
	assert.InDelta(t, 6.0, m.RowNorm(0, 3), 1e-12)
}

func TestMatrix_ScaleReduceSnapsCancellationNoise(t *testing.T) {
	dst := []float64{0.3, 1e-12, 5}
	src := []float64{0.1, 0, 1}
	// 0.3 - 3*0.1 leaves ~5.5e-17 of rounding noise.
	ScaleReduce(dst, src, 3)
	assert.Equal(t, 0.0, dst[0])
	// genuinely small values untouched by the reduction survive.
	assert.Equal(t, 1e-12, dst[1])
	assert.Equal(t, 2.0, dst[2])
}

func TestMatrix_Pivot(t *testing.T) {
	m := NewMatrix(2, 3)
	m.SetRow(0, []float64{2, 4, 8})
	m.SetRow(1, []float64{1, 3, 5})
	m.Pivot(0, 0)
	assert.Equal(t, []float64{1, 2, 4}, m.Row(0))
	assert.Equal(t, []float64{0, 1, 1}, m.Row(1))
	assert.Panics(t, func() { m.Pivot(1, 0) })
}

func TestMatrix_ColumnHelpers(t *testing.T) {
	m := NewMatrix(3, 2)
	m.Set(1, 1, 7)
	assert.True(t, m.ColumnIsZero(0))
	assert.False(t, m.ColumnIsZero(1))
	m.ZeroColumn(1)
	assert.True(t, m.ColumnIsZero(1))
	assert.Panics(t, func() { m.At(3, 0) })
	assert.Panics(t, func() { m.SetRow(0, []float64{1}) })
}

func TestMatrix_CloneIsIndependent(t *testing.T) {
	m := NewMatrix(1, 2)
	c := m.Clone()
	c.Set(0, 0, 1)
	assert.Equal(t, 0.0, m.At(0, 0))

	m.Set(0, 1, 1.5)
	assert.Equal(t, 1.5, m.Dot(0, []float64{0, 1}))
	assert.Equal(t, 0.0, c.At(0, 1))
}

func TestLinearEquation_Normalization(t *testing.T) {
	e := NewLinearEquation(Term{3, 1}, Term{1, 2}, Term{3, -1}, Term{2, 0})
	require.Equal(t, []Term{{Index: 1, Coef: 2}}, e.Terms())
	assert.Equal(t, 1, e.MaxIndex())
	assert.Equal(t, 2.0, e.Coef(1))
	assert.Equal(t, 0.0, e.Coef(3))
	assert.Panics(t, func() { NewLinearEquation(Term{-1, 1}) })
}

func TestLinearEquation_Arithmetic(t *testing.T) {
	a := NewLinearEquation(Term{0, 1}, Term{2, 3})
	b := NewLinearEquation(Term{1, 4}, Term{2, 3})

	assert.Equal(t, []Term{{0, 1}, {1, 4}, {2, 6}}, a.Add(b).Terms())
	assert.Equal(t, []Term{{0, 1}, {1, -4}}, a.Sub(b).Terms())
	assert.Equal(t, []Term{{0, -2}, {2, -6}}, a.Scale(-2).Terms())
	assert.True(t, a.Scale(0).IsEmpty())
	assert.True(t, a.Sub(a).IsEmpty())
	assert.Equal(t, []Term{{0, 1}, {2, 3}, {5, 1}}, a.AddTerm(5, 1).Terms())

	// operations never mutate their inputs
	assert.Equal(t, []Term{{0, 1}, {2, 3}}, a.Terms())
}

func TestLinearEquation_EvaluateAndCompare(t *testing.T) {
	e := NewLinearEquation(Term{0, 2}, Term{2, -1})
	x := []float64{3, 100, 4}
	assert.Equal(t, 2.0, e.Evaluate(x))
	assert.Equal(t, 10.0, e.AbsEvaluate(x))

	assert.True(t, e.Equal(NewLinearEquation(Term{2, -1}, Term{0, 2})))
	assert.Equal(t, -1, e.Compare(NewLinearEquation(Term{0, 3})))
	assert.Equal(t, 1, e.Compare(NewLinearEquation(Term{0, 2})))
	assert.Equal(t, "2*x0 - x2", e.String())
	assert.Equal(t, "0", LinearEquation{}.String())
}

func TestLinearEquation_DenseRoundTrip(t *testing.T) {
	e := FromDense([]float64{0, 1.5, 0, -2})
	assert.Equal(t, []Term{{1, 1.5}, {3, -2}}, e.Terms())

	row := make([]float64, 3)
	e.Scatter(row, func(idx int) int {
		if idx == 3 {
			return 0
		}
		return -1
	})
	assert.Equal(t, []float64{-2, 0, 0}, row)
}
