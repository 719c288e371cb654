package lp

import (
	"fmt"

	"github.com/resource-sim/resource-sim/sim/linalg"
)

// Relation is the comparison of a constraint.
type Relation int

const (
	LessEqual Relation = iota
	GreaterEqual
	Equal
)

var relationNames = [...]string{
	LessEqual:    "<=",
	GreaterEqual: ">=",
	Equal:        "==",
}

func (r Relation) String() string { return relationNames[r] }

// Constraint is either a LinearConstraint or a SimpleConstraint.
type Constraint interface {
	standardize() (row, Relation)
	fmt.Stringer
}

// LinearConstraint is Equation <Relation> Constant over any number of
// variables.
type LinearConstraint struct {
	Equation linalg.LinearEquation
	Relation Relation
	Constant float64
}

// LessEq returns eq <= c.
func LessEq(eq linalg.LinearEquation, c float64) LinearConstraint {
	return LinearConstraint{Equation: eq, Relation: LessEqual, Constant: c}
}

// GreaterEq returns eq >= c.
func GreaterEq(eq linalg.LinearEquation, c float64) LinearConstraint {
	return LinearConstraint{Equation: eq, Relation: GreaterEqual, Constant: c}
}

// Equals returns eq == c.
func Equals(eq linalg.LinearEquation, c float64) LinearConstraint {
	return LinearConstraint{Equation: eq, Relation: Equal, Constant: c}
}

func (c LinearConstraint) standardize() (row, Relation) {
	return standardize(c.Equation, c.Relation, c.Constant)
}

func (c LinearConstraint) String() string {
	return fmt.Sprintf("%v %v %g", c.Equation, c.Relation, c.Constant)
}

// SimpleConstraint bounds a single variable.
type SimpleConstraint struct {
	Variable Variable
	Relation Relation
	Constant float64
}

func (c SimpleConstraint) standardize() (row, Relation) {
	return standardize(c.Variable.Equation(), c.Relation, c.Constant)
}

func (c SimpleConstraint) String() string {
	return fmt.Sprintf("%v %v %g", c.Variable, c.Relation, c.Constant)
}

// row is eq <= constant, or eq == constant when kept with the equalities.
type row struct {
	eq       linalg.LinearEquation
	constant float64
}

// standardize rewrites >= as a negated <=. Equalities keep their relation.
func standardize(eq linalg.LinearEquation, rel Relation, c float64) (row, Relation) {
	switch rel {
	case LessEqual:
		return row{eq: eq, constant: c}, LessEqual
	case GreaterEqual:
		return row{eq: eq.Neg(), constant: -c}, LessEqual
	case Equal:
		return row{eq: eq, constant: c}, Equal
	}
	panic(fmt.Sprintf("lp: unknown relation %d", rel))
}

// trivial reports whether the row has no variables, and if so whether its
// constant satisfies the relation.
func (r row) trivial(rel Relation) (isTrivial, holds bool) {
	if !r.eq.IsEmpty() {
		return false, false
	}
	if rel == Equal {
		return true, r.constant == 0
	}
	return true, r.constant >= 0
}

// satisfied checks the row against x within FeasibilityTolerance, scaled by
// the magnitude of the terms involved.
func (r row) satisfied(x []float64, rel Relation) bool {
	lhs := r.eq.Evaluate(x)
	tol := FeasibilityTolerance * (1 + max(abs(r.constant), r.eq.AbsEvaluate(x)))
	if rel == Equal {
		return abs(lhs-r.constant) <= tol
	}
	return lhs <= r.constant+tol
}

func (r row) String() string {
	return fmt.Sprintf("%v <= %g", r.eq, r.constant)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
