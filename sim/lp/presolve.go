package lp

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/bitset"
	"github.com/resource-sim/resource-sim/sim/linalg"
)

type rowKind uint8

const (
	kindEquality rowKind = iota
	kindInequality
	kindLeft  // left side of a disjunction; the right side is the next row
	kindRight // right side of a disjunction
	kindObjective
	kindDropped
)

// RowState classifies a constraint row after reduction.
type RowState uint8

const (
	// Valid rows constrain live variables and must be kept.
	Valid RowState = iota
	// Vacuous rows hold for every x >= 0.
	Vacuous
	// Unsolvable rows hold for no x >= 0.
	Unsolvable
)

func (s RowState) String() string {
	switch s {
	case Vacuous:
		return "vacuous"
	case Unsolvable:
		return "unsolvable"
	}
	return "valid"
}

// reducedObjective is the objective after presolve: eq·x + offset.
type reducedObjective struct {
	eq     linalg.LinearEquation
	offset float64
}

// presolver holds the augmented matrix [coefficients | constant] of every
// row. Row order: equalities, inequalities, disjunction pairs, objective.
// Constraint rows read a·x <rel> b; the objective row reads c·x + offset.
type presolver struct {
	m          *linalg.Matrix
	n          int
	kinds      []rowKind
	objRow     int
	eliminated *bitset.BitSet
	p          *LinearProblem
}

func rowTolerance(row []float64, n int) float64 {
	norm := 0.0
	for _, v := range row[:n+1] {
		norm = math.Max(norm, math.Abs(v))
	}
	return linalg.ZeroTolerance * math.Max(1, norm)
}

// presolve simplifies p in place and returns the reduced objective. It
// returns ErrInfeasible as soon as any row is proven contradictory.
func (p *LinearProblem) presolve(objective linalg.LinearEquation) (reducedObjective, error) {
	ps := newPresolver(p, objective)
	ps.partialRowReduce()
	for {
		changed, err := ps.inferZeros()
		if err != nil {
			return reducedObjective{}, err
		}
		if changed {
			ps.partialRowReduce()
		}
		folded, err := ps.foldSingleVariableEqualities()
		if err != nil {
			return reducedObjective{}, err
		}
		singletons := ps.eliminateColumnSingletons()
		if !changed && !folded && !singletons {
			break
		}
	}
	return ps.rebuild()
}

func newPresolver(p *LinearProblem, objective linalg.LinearEquation) *presolver {
	n := p.numVars
	rows := len(p.equalities) + len(p.simple) + len(p.constraints) + 2*len(p.disjunctions) + 1
	ps := &presolver{
		m:          linalg.NewMatrix(rows, n+1),
		n:          n,
		kinds:      make([]rowKind, rows),
		eliminated: bitset.New(n),
		p:          p,
	}
	identity := func(idx int) int { return idx }
	r := 0
	put := func(rw row, kind rowKind) {
		rw.eq.Scatter(ps.m.Row(r), identity)
		ps.m.Set(r, n, rw.constant)
		ps.kinds[r] = kind
		r++
	}
	for _, rw := range p.equalities {
		put(rw, kindEquality)
	}
	for _, rw := range p.simple {
		put(rw, kindInequality)
	}
	for _, rw := range p.constraints {
		put(rw, kindInequality)
	}
	for _, d := range p.disjunctions {
		put(d.left, kindLeft)
		put(d.right, kindRight)
	}
	ps.objRow = r
	put(row{eq: objective}, kindObjective)
	return ps
}

// partialRowReduce runs Gauss-Jordan elimination over the equality rows
// only, choosing the largest available pivot in each column.
func (ps *presolver) partialRowReduce() {
	var eqRows []int
	for r, k := range ps.kinds {
		if k == kindEquality {
			eqRows = append(eqRows, r)
		}
	}
	used := make([]bool, len(eqRows))
	for col := 0; col < ps.n; col++ {
		best, bestAbs := -1, linalg.ZeroTolerance
		for k, r := range eqRows {
			if used[k] {
				continue
			}
			if v := math.Abs(ps.m.At(r, col)); v > bestAbs {
				best, bestAbs = k, v
			}
		}
		if best < 0 {
			continue
		}
		used[best] = true
		pr := eqRows[best]
		ps.m.ScaleRow(pr, 1/ps.m.At(pr, col))
		ps.m.Set(pr, col, 1)
		for _, r := range eqRows {
			if r == pr {
				continue
			}
			if f := ps.m.At(r, col); f != 0 {
				ps.m.ScaleReduce(r, pr, f)
				ps.m.Set(r, col, 0)
			}
		}
	}
}

// signs reports whether every coefficient of row r is >= 0 and whether
// every coefficient is <= 0. Both hold for an all-zero row.
func (ps *presolver) signs(r int) (nonNeg, nonPos bool) {
	nonNeg, nonPos = true, true
	for _, v := range ps.m.Row(r)[:ps.n] {
		if v > 0 {
			nonPos = false
		} else if v < 0 {
			nonNeg = false
		}
	}
	return nonNeg, nonPos
}

// rowState classifies row r from its sign pattern and constant.
func (ps *presolver) rowState(r int, equality bool) RowState {
	row := ps.m.Row(r)
	b := row[ps.n]
	tol := rowTolerance(row, ps.n)
	nonNeg, nonPos := ps.signs(r)
	if equality {
		switch {
		case nonNeg && nonPos:
			if math.Abs(b) <= tol {
				return Vacuous
			}
			return Unsolvable
		case nonNeg && b < -tol, nonPos && b > tol:
			return Unsolvable
		}
		return Valid
	}
	switch {
	case nonNeg && b < -tol:
		return Unsolvable
	case nonPos && b >= -tol:
		return Vacuous
	}
	return Valid
}

// inferZeros scans equality and inequality rows for sign patterns that
// force variables to zero (a one-signed row whose constant is zero) or that
// prove the problem infeasible. Forced columns are eliminated across the
// whole matrix.
func (ps *presolver) inferZeros() (bool, error) {
	forced := bitset.New(ps.n)
	for r, kind := range ps.kinds {
		if kind != kindEquality && kind != kindInequality {
			continue
		}
		equality := kind == kindEquality
		switch ps.rowState(r, equality) {
		case Unsolvable:
			return false, ErrInfeasible
		case Vacuous:
			ps.kinds[r] = kindDropped
			continue
		}
		row := ps.m.Row(r)
		if math.Abs(row[ps.n]) > rowTolerance(row, ps.n) {
			continue
		}
		nonNeg, nonPos := ps.signs(r)
		if !nonNeg && !nonPos {
			continue
		}
		// One-signed row with zero constant: every variable it touches is 0.
		// (An all-nonpositive inequality with zero constant is vacuous and
		// was dropped above.)
		for j, v := range row[:ps.n] {
			if v != 0 {
				forced.Set(j)
			}
		}
		row[ps.n] = 0
	}
	if forced.IsEmpty() {
		return false, nil
	}
	for j := range forced.All() {
		ps.fix(j, 0)
	}
	return true, nil
}

// fix substitutes x_j = val into every row and records the substitution.
func (ps *presolver) fix(j int, val float64) {
	for r, kind := range ps.kinds {
		a := ps.m.At(r, j)
		if a == 0 {
			continue
		}
		if kind == kindObjective {
			ps.m.Set(r, ps.n, ps.m.At(r, ps.n)+a*val)
		} else {
			ps.m.Set(r, ps.n, ps.m.At(r, ps.n)-a*val)
		}
	}
	ps.m.ZeroColumn(j)
	ps.eliminated.Set(j)
	ps.p.substitute(Substitution{Var: j, Constant: val})
}

// foldSingleVariableEqualities turns every equality a·x_j = b into the
// substitution x_j = b/a.
func (ps *presolver) foldSingleVariableEqualities() (bool, error) {
	changed := false
	for r, kind := range ps.kinds {
		if kind != kindEquality || ps.m.CountNonZero(r, ps.n) != 1 {
			continue
		}
		row := ps.m.Row(r)
		j := 0
		for row[j] == 0 {
			j++
		}
		val := row[ps.n] / row[j]
		if val < -rowTolerance(row, ps.n) {
			return false, ErrInfeasible
		}
		val = math.Max(val, 0)
		ps.kinds[r] = kindDropped
		ps.fix(j, val)
		changed = true
	}
	return changed, nil
}

// eliminateColumnSingletons removes variables that occur in exactly one
// row, that row being an equality with other variables, and not in the
// objective. The equality a_j·x_j + Σ a_k·x_k = b becomes the substitution
// x_j = (b - Σ a_k·x_k)/a_j, and the row becomes the inequality implied by
// x_j >= 0.
func (ps *presolver) eliminateColumnSingletons() bool {
	changed := false
	for j := 0; j < ps.n; j++ {
		if ps.eliminated.Get(j) {
			continue
		}
		only, count := -1, 0
		for r, kind := range ps.kinds {
			if kind == kindDropped || ps.m.At(r, j) == 0 {
				continue
			}
			only = r
			count++
			if count > 1 {
				break
			}
		}
		if count != 1 || ps.kinds[only] != kindEquality || ps.m.CountNonZero(only, ps.n) < 2 {
			continue
		}
		row := ps.m.Row(only)
		a := row[j]
		terms := make([]linalg.Term, 0, ps.m.CountNonZero(only, ps.n)-1)
		for k, v := range row[:ps.n] {
			if k != j && v != 0 {
				terms = append(terms, linalg.Term{Index: k, Coef: -v / a})
			}
		}
		ps.p.substitute(Substitution{
			Var:      j,
			Equation: linalg.NewLinearEquation(terms...),
			Constant: row[ps.n] / a,
		})
		ps.eliminated.Set(j)
		row[j] = 0
		if a < 0 {
			ps.m.ScaleRow(only, -1)
		}
		ps.kinds[only] = kindInequality
		changed = true
	}
	return changed
}

// rowEquation extracts the live part of row r.
func (ps *presolver) rowEquation(r int) row {
	rw := ps.m.Row(r)
	return row{eq: linalg.FromDense(rw[:ps.n]), constant: rw[ps.n]}
}

// rebuild replaces the problem's constraint lists with the reduced rows.
func (ps *presolver) rebuild() (reducedObjective, error) {
	p := ps.p
	p.equalities, p.simple, p.constraints = nil, nil, nil
	oldDisjunctions := p.disjunctions
	p.disjunctions = nil

	d := 0
	for r := 0; r < len(ps.kinds); r++ {
		switch ps.kinds[r] {
		case kindEquality:
			switch ps.rowState(r, true) {
			case Unsolvable:
				return reducedObjective{}, ErrInfeasible
			case Valid:
				p.equalities = append(p.equalities, ps.rowEquation(r))
			}
		case kindInequality:
			switch ps.rowState(r, false) {
			case Unsolvable:
				return reducedObjective{}, ErrInfeasible
			case Valid:
				p.addRow(ps.rowEquation(r), LessEqual)
			}
		case kindLeft:
			dj := oldDisjunctions[d]
			d++
			left, right := ps.rowState(r, false), ps.rowState(r+1, false)
			switch {
			case left == Vacuous:
				p.substitute(Substitution{Var: dj.z, Constant: 0})
			case right == Vacuous:
				p.substitute(Substitution{Var: dj.z, Constant: 1})
			case left == Unsolvable && right == Unsolvable:
				return reducedObjective{}, ErrInfeasible
			case left == Unsolvable:
				p.addRow(ps.rowEquation(r+1), LessEqual)
				p.substitute(Substitution{Var: dj.z, Constant: 1})
			case right == Unsolvable:
				p.addRow(ps.rowEquation(r), LessEqual)
				p.substitute(Substitution{Var: dj.z, Constant: 0})
			default:
				p.disjunctions = append(p.disjunctions, disjunction{
					z:     dj.z,
					left:  ps.rowEquation(r),
					right: ps.rowEquation(r + 1),
				})
			}
			r++ // right side consumed
		case kindDropped:
			if ps.p.opts.Trace {
				logrus.Debugf("lp: presolve dropped row %d", r)
			}
		}
	}
	objRow := ps.m.Row(ps.objRow)
	return reducedObjective{eq: linalg.FromDense(objRow[:ps.n]), offset: objRow[ps.n]}, nil
}
