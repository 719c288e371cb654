package lp

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/internal/collections"
	"github.com/resource-sim/resource-sim/sim/linalg"
)

// disjunction requires left OR right to hold. z selects the enforced side
// once decided: z = 0 enforces left, z = 1 enforces right.
type disjunction struct {
	z           int
	left, right row
}

// Substitution records an eliminated variable as
// x[Var] = Constant + Equation·x.
type Substitution struct {
	Var      int
	Equation linalg.LinearEquation
	Constant float64
}

// LinearProblem accumulates variables and constraints for a single
// maximization. All variables are implicitly non-negative.
type LinearProblem struct {
	opts    Options
	numVars int

	equalities   []row
	constraints  []row // two or more variables
	simple       []row // exactly one variable
	disjunctions []disjunction

	// infeasible is set when a constraint with no variables fails.
	infeasible bool

	// substitutions is populated by presolve: eliminated variable -> index
	// into subs, which keeps elimination order for reconstruction.
	substitutions *collections.SortedMap[int]
	subs          []Substitution
}

// NewLinearProblem returns an empty problem.
func NewLinearProblem(opts Options) *LinearProblem {
	return &LinearProblem{opts: opts, substitutions: collections.NewSortedMap[int]()}
}

// NumVariables returns the number of variables created so far.
func (p *LinearProblem) NumVariables() int { return p.numVars }

// NumConstraints returns the number of stored equalities, inequalities and
// disjunctions.
func (p *LinearProblem) NumConstraints() int {
	return len(p.equalities) + len(p.constraints) + len(p.simple) + len(p.disjunctions)
}

// NumDisjunctions returns the number of stored disjunctions.
func (p *LinearProblem) NumDisjunctions() int { return len(p.disjunctions) }

// CreateVariable allocates one variable.
func (p *LinearProblem) CreateVariable() Variable {
	v := Variable{Index: p.numVars, Coef: 1}
	p.numVars++
	return v
}

// CreateVariables allocates n consecutive variables. A negative n is a
// caller bug and panics.
func (p *LinearProblem) CreateVariables(n int) VariableSet {
	if n < 0 {
		panic(fmt.Sprintf("lp: CreateVariables(%d): negative count", n))
	}
	s := VariableSet{start: p.numVars, count: n}
	p.numVars += n
	return s
}

func (p *LinearProblem) checkVariables(eq linalg.LinearEquation) {
	if idx := eq.MaxIndex(); idx >= p.numVars {
		panic(fmt.Sprintf("lp: constraint references variable x%d but only %d exist", idx, p.numVars))
	}
}

// AddConstraint adds c to the problem. A constraint without variables is
// resolved immediately: it is dropped if it holds and makes the problem
// infeasible otherwise.
func (p *LinearProblem) AddConstraint(c Constraint) {
	r, rel := c.standardize()
	p.checkVariables(r.eq)
	p.addRow(r, rel)
}

func (p *LinearProblem) addRow(r row, rel Relation) {
	if trivial, holds := r.trivial(rel); trivial {
		if !holds {
			p.infeasible = true
		}
		return
	}
	switch {
	case rel == Equal:
		p.equalities = append(p.equalities, r)
	case r.eq.Len() == 1:
		p.simple = append(p.simple, r)
	default:
		p.constraints = append(p.constraints, r)
	}
}

// AddOrConstraint adds the disjunction "a holds OR b holds". Both sides
// must be inequalities. If one side can never hold the other is added as
// a plain constraint, and if one side always holds nothing is added; in
// neither case is a decision variable allocated.
func (p *LinearProblem) AddOrConstraint(a, b Constraint) {
	ra, relA := a.standardize()
	rb, relB := b.standardize()
	if relA == Equal || relB == Equal {
		panic("lp: AddOrConstraint requires inequality constraints")
	}
	p.checkVariables(ra.eq)
	p.checkVariables(rb.eq)

	trivA, holdsA := ra.trivial(LessEqual)
	trivB, holdsB := rb.trivial(LessEqual)
	switch {
	case (trivA && holdsA) || (trivB && holdsB):
		return
	case trivA:
		p.addRow(rb, LessEqual)
		return
	case trivB:
		p.addRow(ra, LessEqual)
		return
	}
	z := p.CreateVariable()
	p.disjunctions = append(p.disjunctions, disjunction{z: z.Index, left: ra, right: rb})
}

// clone returns a deep-enough copy for Maximize to presolve without
// touching the receiver. Rows hold immutable equations, so copying the
// slices suffices.
func (p *LinearProblem) clone() *LinearProblem {
	c := &LinearProblem{
		opts:          p.opts,
		numVars:       p.numVars,
		equalities:    slices.Clone(p.equalities),
		constraints:   slices.Clone(p.constraints),
		simple:        slices.Clone(p.simple),
		disjunctions:  slices.Clone(p.disjunctions),
		infeasible:    p.infeasible,
		substitutions: collections.NewSortedMap[int](),
		subs:          slices.Clone(p.subs),
	}
	for i, s := range c.subs {
		c.substitutions.Put(s.Var, i)
	}
	return c
}

func (p *LinearProblem) substitute(s Substitution) {
	p.substitutions.Put(s.Var, len(p.subs))
	p.subs = append(p.subs, s)
}

// IsSubstituted reports whether presolve eliminated variable idx.
func (p *LinearProblem) IsSubstituted(idx int) bool { return p.substitutions.Has(idx) }

// Maximize finds x >= 0 maximizing objective subject to every constraint.
// It returns an error wrapping ErrUnsolvable when no optimum exists, and
// ErrIterationLimit or ErrNodeLimit when a search cap is reached first.
// The receiver is not modified and may be maximized again.
func (p *LinearProblem) Maximize(objective linalg.LinearEquation) (*Solution, error) {
	p.checkVariables(objective)
	if p.infeasible {
		return nil, ErrInfeasible
	}

	work := p.clone()
	stats := Stats{}
	obj := reducedObjective{eq: objective}
	if !p.opts.DisablePresolve {
		var err error
		obj, err = work.presolve(objective)
		if err != nil {
			if p.opts.Trace {
				logrus.Debugf("lp: presolve proved problem unsolvable: %v", err)
			}
			return nil, err
		}
		stats.Presolved = true
		stats.Eliminated = len(work.subs)
	}
	if p.opts.Trace {
		logrus.Debugf("lp: %d variables (%d eliminated), %d equalities, %d inequalities, %d disjunctions",
			work.numVars, stats.Eliminated, len(work.equalities), len(work.constraints)+len(work.simple), len(work.disjunctions))
	}

	var (
		res *nodeResult
		err error
	)
	if len(work.disjunctions) == 0 {
		res, err = work.solveNode(obj, nil, &stats)
		stats.Nodes = 1
	} else {
		res, err = work.branchAndBound(obj, &stats)
	}
	if err != nil {
		return nil, err
	}

	values := work.reconstruct(res)
	p.CheckSolution(values)
	return &Solution{
		Values:    values,
		Objective: objective.Evaluate(values),
		Stats:     stats,
	}, nil
}

// reconstruct expands a node solution over live variables into a value
// for every variable, replaying substitutions newest first.
func (p *LinearProblem) reconstruct(res *nodeResult) []float64 {
	values := make([]float64, p.numVars)
	copy(values, res.values)
	for i, d := range p.disjunctions {
		if res.choices != nil && res.choices[i] == Right {
			values[d.z] = 1
		} else if res.choices != nil && res.choices[i] == Left {
			values[d.z] = 0
		}
	}
	for i := len(p.subs) - 1; i >= 0; i-- {
		s := p.subs[i]
		v := s.Constant + s.Equation.Evaluate(values)
		if v < 0 && v > -FeasibilityTolerance {
			v = 0
		}
		values[s.Var] = v
	}
	return values
}

// CheckSolution verifies x against every constraint as it was added and
// panics with full context if any is violated: a violation means the
// solver itself is wrong, and returning the assignment would report a
// physically impossible flow.
func (p *LinearProblem) CheckSolution(x []float64) {
	fail := func(kind string, i int, r row) {
		logrus.WithFields(logrus.Fields{
			"kind":       kind,
			"index":      i,
			"constraint": r.String(),
			"lhs":        r.eq.Evaluate(x),
		}).Panicf("lp: solution violates %s constraint %d", kind, i)
	}
	if len(x) != p.numVars {
		panic(fmt.Sprintf("lp: solution has %d values for %d variables", len(x), p.numVars))
	}
	for i, v := range x {
		if v < -FeasibilityTolerance {
			fail("non-negativity", i, row{eq: linalg.NewLinearEquation(linalg.Term{Index: i, Coef: -1})})
		}
	}
	for i, r := range p.equalities {
		if !r.satisfied(x, Equal) {
			fail("equality", i, r)
		}
	}
	for i, r := range p.simple {
		if !r.satisfied(x, LessEqual) {
			fail("simple", i, r)
		}
	}
	for i, r := range p.constraints {
		if !r.satisfied(x, LessEqual) {
			fail("inequality", i, r)
		}
	}
	for i, d := range p.disjunctions {
		if !d.left.satisfied(x, LessEqual) && !d.right.satisfied(x, LessEqual) {
			fail("disjunction", i, d.left)
		}
	}
}
