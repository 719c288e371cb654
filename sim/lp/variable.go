package lp

import (
	"fmt"

	"github.com/resource-sim/resource-sim/sim/linalg"
)

// Variable is a problem variable index paired with a coefficient, so that
// expressions can be composed as v.Mul(2).Plus(w).
type Variable struct {
	Index int
	Coef  float64
}

// Mul returns v scaled by f.
func (v Variable) Mul(f float64) Variable { return Variable{Index: v.Index, Coef: v.Coef * f} }

// Neg returns -v.
func (v Variable) Neg() Variable { return v.Mul(-1) }

// Equation returns v as a one-term equation.
func (v Variable) Equation() linalg.LinearEquation {
	return linalg.NewLinearEquation(linalg.Term{Index: v.Index, Coef: v.Coef})
}

// Plus returns v + o.
func (v Variable) Plus(o Variable) linalg.LinearEquation { return Sum(v, o) }

// Minus returns v - o.
func (v Variable) Minus(o Variable) linalg.LinearEquation { return Sum(v, o.Neg()) }

// AtMost returns the constraint v <= c.
func (v Variable) AtMost(c float64) SimpleConstraint {
	return SimpleConstraint{Variable: v, Relation: LessEqual, Constant: c}
}

// AtLeast returns the constraint v >= c.
func (v Variable) AtLeast(c float64) SimpleConstraint {
	return SimpleConstraint{Variable: v, Relation: GreaterEqual, Constant: c}
}

// Exactly returns the constraint v == c.
func (v Variable) Exactly(c float64) SimpleConstraint {
	return SimpleConstraint{Variable: v, Relation: Equal, Constant: c}
}

func (v Variable) String() string {
	if v.Coef == 1 {
		return fmt.Sprintf("x%d", v.Index)
	}
	return fmt.Sprintf("%g*x%d", v.Coef, v.Index)
}

// Sum returns the equation Σ vars.
func Sum(vars ...Variable) linalg.LinearEquation {
	terms := make([]linalg.Term, len(vars))
	for i, v := range vars {
		terms[i] = linalg.Term{Index: v.Index, Coef: v.Coef}
	}
	return linalg.NewLinearEquation(terms...)
}

// VariableSet is a contiguous block of variables created together.
type VariableSet struct {
	start, count int
}

// Len returns the number of variables in the set.
func (s VariableSet) Len() int { return s.count }

// At returns the i-th variable of the set with coefficient 1.
func (s VariableSet) At(i int) Variable {
	if i < 0 || i >= s.count {
		panic(fmt.Sprintf("lp: variable %d out of set of %d", i, s.count))
	}
	return Variable{Index: s.start + i, Coef: 1}
}

// Sum returns the equation Σ set[i].
func (s VariableSet) Sum() linalg.LinearEquation {
	terms := make([]linalg.Term, s.count)
	for i := range terms {
		terms[i] = linalg.Term{Index: s.start + i, Coef: 1}
	}
	return linalg.NewLinearEquation(terms...)
}
