package lp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim/bitset"
	"github.com/resource-sim/resource-sim/sim/linalg"
)

// max 3x + 2y  s.t.  x + y <= 4,  x + 3y <= 6,  x <= 3
func slackTableau() *linalg.Matrix {
	t := linalg.NewMatrix(4, 6)
	t.SetRow(0, []float64{-3, -2, 0, 0, 0, 0})
	t.SetRow(1, []float64{1, 1, 1, 0, 0, 4})
	t.SetRow(2, []float64{1, 3, 0, 1, 0, 6})
	t.SetRow(3, []float64{1, 0, 0, 0, 1, 3})
	return t
}

func TestSolveTableau_ReachesOptimum(t *testing.T) {
	tab := slackTableau()
	basis := bitset.FromIndices(5, 2, 3, 4)

	pivots, err := SolveTableau(tab, basis, DefaultMaxIterations)
	require.NoError(t, err)
	assert.Equal(t, 2, pivots)
	assert.InDelta(t, 11.0, tab.At(0, 5), 1e-12)
	assert.Equal(t, []int{0, 1, 3}, basis.Indices())
}

func TestSolveTableau_IterationLimit(t *testing.T) {
	tab := slackTableau()
	basis := bitset.FromIndices(5, 2, 3, 4)

	pivots, err := SolveTableau(tab, basis, 1)
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.NotErrorIs(t, err, ErrUnsolvable)
	assert.Equal(t, 1, pivots)
}

func TestSolveTableau_Unbounded(t *testing.T) {
	// max x  s.t.  -x + s = 1
	tab := linalg.NewMatrix(2, 3)
	tab.SetRow(0, []float64{-1, 0, 0})
	tab.SetRow(1, []float64{-1, 1, 1})
	_, err := SolveTableau(tab, bitset.FromIndices(2, 1), DefaultMaxIterations)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSolveTableau_RejectsNonUnitBasis(t *testing.T) {
	tab := slackTableau()
	assert.Panics(t, func() { SolveTableau(tab, bitset.FromIndices(5, 0, 3, 4), DefaultMaxIterations) })
	assert.Panics(t, func() { SolveTableau(tab, bitset.FromIndices(4, 0), DefaultMaxIterations) })
}
