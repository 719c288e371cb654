package lp

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/linalg"
)

// Choice records which side of a disjunction a search node enforces.
type Choice uint8

const (
	// Unknown leaves the disjunction relaxed through its decision variable.
	Unknown Choice = iota
	// Left enforces the first constraint.
	Left
	// Right enforces the second constraint.
	Right
)

func (c Choice) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

func (c Choice) opposite() Choice {
	switch c {
	case Left:
		return Right
	case Right:
		return Left
	}
	return Unknown
}

// nodeResult is the optimum of one LP relaxation.
type nodeResult struct {
	values    []float64 // indexed by variable; eliminated variables are 0
	choices   []Choice
	objective float64
	// z holds the relaxed decision value of every Unknown disjunction.
	z []float64
}

// adoptIntegral returns the node's choices with every undecided
// disjunction whose relaxed decision value settled at 0 or 1 fixed to the
// side it enforces.
func (n *nodeResult) adoptIntegral() []Choice {
	out := slices.Clone(n.choices)
	for i, c := range out {
		if c != Unknown {
			continue
		}
		switch z := n.z[i]; {
		case math.Abs(z) <= linalg.ZeroTolerance:
			out[i] = Left
		case math.Abs(z-1) <= linalg.ZeroTolerance:
			out[i] = Right
		}
	}
	return out
}

type nodeRow struct {
	eq       linalg.LinearEquation
	equality bool
	constant float64
	bigM     bool // constant carries +BigM
}

// nodeRows lists the constraints of the relaxation defined by choices.
// Unknown disjunctions use the big-M rows
//
//	left - M·z <= b_l,  right + M·z <= b_r + M,  z <= 1.
func (p *LinearProblem) nodeRows(choices []Choice) []nodeRow {
	rows := make([]nodeRow, 0, len(p.equalities)+len(p.simple)+len(p.constraints)+3*len(p.disjunctions))
	for _, r := range p.equalities {
		rows = append(rows, nodeRow{eq: r.eq, equality: true, constant: r.constant})
	}
	for _, r := range p.simple {
		rows = append(rows, nodeRow{eq: r.eq, constant: r.constant})
	}
	for _, r := range p.constraints {
		rows = append(rows, nodeRow{eq: r.eq, constant: r.constant})
	}
	for i, d := range p.disjunctions {
		switch choiceAt(choices, i) {
		case Left:
			rows = append(rows, nodeRow{eq: d.left.eq, constant: d.left.constant})
		case Right:
			rows = append(rows, nodeRow{eq: d.right.eq, constant: d.right.constant})
		default:
			rows = append(rows,
				nodeRow{eq: d.left.eq.AddTerm(d.z, -BigM), constant: d.left.constant},
				nodeRow{eq: d.right.eq.AddTerm(d.z, BigM), constant: d.right.constant + BigM, bigM: true},
				nodeRow{eq: linalg.NewLinearEquation(linalg.Term{Index: d.z, Coef: 1}), constant: 1},
			)
		}
	}
	return rows
}

func choiceAt(choices []Choice, i int) Choice {
	if choices == nil {
		return Unknown
	}
	return choices[i]
}

// solveNode solves the LP relaxation selected by choices with the two-phase
// simplex method. It returns ErrInfeasible or ErrUnbounded when the
// relaxation has no optimum.
func (p *LinearProblem) solveNode(obj reducedObjective, choices []Choice, stats *Stats) (*nodeResult, error) {
	// Structural columns: every live variable plus the decision variable of
	// each undecided disjunction.
	isDecision := make([]bool, p.numVars)
	for _, d := range p.disjunctions {
		isDecision[d.z] = true
	}
	col := make([]int, p.numVars)
	var vars []int
	for v := range p.numVars {
		col[v] = -1
		if !isDecision[v] && !p.IsSubstituted(v) {
			col[v] = len(vars)
			vars = append(vars, v)
		}
	}
	for i, d := range p.disjunctions {
		if choiceAt(choices, i) == Unknown {
			col[d.z] = len(vars)
			vars = append(vars, d.z)
		}
	}
	mapCol := func(v int) int { return col[v] }

	rows := p.nodeRows(choices)
	numSlack, numArt := 0, 0
	for _, r := range rows {
		if !r.equality {
			numSlack++
		}
		if r.equality || r.constant < 0 {
			numArt++
		}
	}
	structural := len(vars)
	firstSlack, firstArt := structural, structural+numSlack
	rhs := firstArt + numArt
	m := len(rows)
	height := m + 1
	if numArt > 0 {
		height++
	}
	t := linalg.NewMatrix(height, rhs+1)
	s := &simplex{
		t:             t,
		basis:         make([]int, m),
		rows:          m,
		rhs:           rhs,
		eligible:      func(c int) bool { return c < firstArt },
		maxIterations: p.opts.maxIterations(),
	}

	slack, art := firstSlack, firstArt
	for i, r := range rows {
		tr := t.Row(i + 1)
		r.eq.Scatter(tr, mapCol)
		tr[rhs] = r.constant
		if !r.equality {
			tr[slack] = 1
			s.basis[i] = slack
			slack++
		}
		if r.equality || r.constant < 0 {
			if tr[rhs] < 0 {
				t.ScaleRow(i+1, -1)
			}
			tr[art] = 1
			s.basis[i] = art
			art++
		}
	}

	if numArt > 0 {
		phase := height - 1
		pr := t.Row(phase)
		for i := range m {
			if s.basis[i] < firstArt {
				continue
			}
			tr := t.Row(i + 1)
			for c := range pr {
				if c < firstArt || c == rhs {
					pr[c] -= tr[c]
				}
			}
		}
		if err := s.run(phase); err != nil {
			stats.Iterations += s.iterations
			return nil, err
		}
		// The tolerance scales with the problem's own constants, not BigM.
		scale := 1.0
		for _, r := range rows {
			if !r.bigM {
				scale = math.Max(scale, math.Abs(r.constant))
			}
		}
		tol := FeasibilityTolerance * scale
		if t.At(phase, rhs) < -tol {
			stats.Iterations += s.iterations
			return nil, ErrInfeasible
		}
		s.expelArtificials(firstArt)
		// Phase two must start from a feasible basis.
		for i := range m {
			if t.At(i+1, rhs) < -tol {
				stats.Iterations += s.iterations
				return nil, ErrInfeasible
			}
		}
	}

	or := t.Row(0)
	obj.eq.Scatter(or, mapCol)
	for c := 0; c < structural; c++ {
		or[c] = -or[c]
	}
	or[rhs] = obj.offset
	s.canonicalize(0)
	err := s.run(0)
	stats.Iterations += s.iterations
	if err != nil {
		return nil, err
	}

	res := &nodeResult{
		values:  make([]float64, p.numVars),
		choices: make([]Choice, len(p.disjunctions)),
		z:       make([]float64, len(p.disjunctions)),
	}
	if choices != nil {
		copy(res.choices, choices)
	}
	for i, c := range s.basis {
		if c < structural {
			res.values[vars[c]] = math.Max(t.At(i+1, rhs), 0)
		}
	}
	for i, d := range p.disjunctions {
		if res.choices[i] == Unknown {
			res.z[i] = res.values[d.z]
			res.values[d.z] = 0
		}
	}
	res.objective = obj.eq.Evaluate(res.values) + obj.offset
	if p.opts.Trace {
		logrus.Debugf("lp: node %v solved in %d pivots, objective %g", res.choices, s.iterations, res.objective)
	}
	return res, nil
}

// expelArtificials pivots basic artificial columns left at zero out of the
// basis. Rows with no other nonzero entry are redundant and keep their
// artificial, which can never re-enter.
func (s *simplex) expelArtificials(firstArt int) {
	for i, c := range s.basis {
		if c < firstArt {
			continue
		}
		row := s.t.Row(i + 1)
		for j := 0; j < firstArt; j++ {
			if math.Abs(row[j]) > pivotTolerance {
				s.t.Pivot(i+1, j)
				s.basis[i] = j
				break
			}
		}
	}
}
