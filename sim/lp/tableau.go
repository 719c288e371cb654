package lp

import (
	"fmt"
	"math"

	"github.com/resource-sim/resource-sim/sim/bitset"
	"github.com/resource-sim/resource-sim/sim/linalg"
)

// blandThreshold is the number of degenerate pivots after which entering
// columns are chosen by Bland's rule, which cannot cycle.
const blandThreshold = 50

// pivotTolerance is the smallest column entry the ratio test will divide by.
const pivotTolerance = 1e-9

// simplex runs primal simplex iterations on a dense tableau. Row 0 holds
// the negated objective with the objective value in the last column. Rows
// 1..rows are constraints, and basis[i] names the unit column of row i+1.
// Any rows past rows (the phase-one objective) are carried along by every
// pivot but never take part in the ratio test.
type simplex struct {
	t        *linalg.Matrix
	basis    []int
	rows     int
	rhs      int
	eligible func(col int) bool

	maxIterations int
	iterations    int
	degenerate    int
}

func (s *simplex) bland() bool { return s.degenerate >= blandThreshold }

// entering returns the column to bring into the basis when maximizing
// objective row obj, or -1 when the row is optimal.
func (s *simplex) entering(obj int) int {
	row := s.t.Row(obj)
	best, bestVal := -1, -pivotTolerance
	for c := 0; c < s.rhs; c++ {
		if !s.eligible(c) || row[c] >= -pivotTolerance {
			continue
		}
		if s.bland() {
			return c
		}
		if row[c] < bestVal {
			best, bestVal = c, row[c]
		}
	}
	return best
}

// leaving returns the constraint row chosen by the minimum-ratio test for
// column col, or -1 when col is unbounded.
func (s *simplex) leaving(col int) int {
	best, bestRatio := -1, math.Inf(1)
	for r := 1; r <= s.rows; r++ {
		a := s.t.At(r, col)
		if a <= pivotTolerance {
			continue
		}
		b := s.t.At(r, s.rhs)
		if b <= -FeasibilityTolerance {
			continue
		}
		ratio := math.Max(b, 0) / a
		switch {
		case ratio < bestRatio:
			best, bestRatio = r, ratio
		case ratio == bestRatio && s.bland() && s.basis[r-1] < s.basis[best-1]:
			best = r
		}
	}
	return best
}

func (s *simplex) pivot(r, c int) {
	if s.t.At(r, s.rhs) <= 0 {
		s.degenerate++
	}
	s.t.Pivot(r, c)
	s.basis[r-1] = c
	s.iterations++
}

// run pivots until objective row obj is optimal.
func (s *simplex) run(obj int) error {
	for {
		c := s.entering(obj)
		if c < 0 {
			return nil
		}
		r := s.leaving(c)
		if r < 0 {
			return ErrUnbounded
		}
		if s.iterations >= s.maxIterations {
			return fmt.Errorf("%w after %d pivots", ErrIterationLimit, s.iterations)
		}
		s.pivot(r, c)
	}
}

// canonicalize clears the objective row entries of basic columns.
func (s *simplex) canonicalize(obj int) {
	for i, c := range s.basis {
		if f := s.t.At(obj, c); f != 0 {
			s.t.ScaleReduce(obj, i+1, f)
			s.t.Set(obj, c, 0)
		}
	}
}

// SolveTableau maximizes a tableau that already holds a feasible basis.
// Row 0 is the negated objective, the last column is the right-hand side,
// and selected marks the basic columns, each of which must be a unit
// column over rows 1..n. On return selected holds the final basis. It
// returns the number of pivots performed.
func SolveTableau(t *linalg.Matrix, selected *bitset.BitSet, maxIterations int) (int, error) {
	rhs := t.Cols() - 1
	if selected.Len() != rhs {
		panic(fmt.Sprintf("lp: basis covers %d columns, tableau has %d", selected.Len(), rhs))
	}
	s := &simplex{
		t:             t,
		basis:         make([]int, t.Rows()-1),
		rows:          t.Rows() - 1,
		rhs:           rhs,
		eligible:      func(int) bool { return true },
		maxIterations: maxIterations,
	}
	for i := range s.basis {
		s.basis[i] = -1
	}
	for c := range selected.All() {
		r := unitRow(t, c)
		if r < 0 || s.basis[r-1] >= 0 {
			panic(fmt.Sprintf("lp: selected column %d is not a unit column", c))
		}
		s.basis[r-1] = c
	}
	for i, c := range s.basis {
		if c < 0 {
			panic(fmt.Sprintf("lp: row %d has no basic column", i+1))
		}
	}
	s.canonicalize(0)
	err := s.run(0)
	selected.ClearAll()
	for _, c := range s.basis {
		selected.Set(c)
	}
	return s.iterations, err
}

// unitRow returns the constraint row holding the single 1 of column c, or -1
// if c is not a unit column.
func unitRow(t *linalg.Matrix, c int) int {
	found := -1
	for r := 1; r < t.Rows(); r++ {
		switch v := t.At(r, c); {
		case v == 0:
		case v == 1 && found < 0:
			found = r
		default:
			return -1
		}
	}
	return found
}
