package lp

import "github.com/resource-sim/resource-sim/sim/linalg"

// Stats describes the work done by one Maximize call.
type Stats struct {
	// Iterations counts simplex pivots over every node.
	Iterations int
	// Nodes counts LP relaxations solved.
	Nodes int
	// Presolved is false when presolve was disabled.
	Presolved bool
	// Eliminated counts variables removed by presolve.
	Eliminated int
	// Truncated is set when the node cap stopped the search with an
	// incumbent in hand; the solution is feasible but may not be optimal.
	Truncated bool
}

// Solution is a feasible assignment to every variable of a problem.
type Solution struct {
	Values    []float64
	Objective float64
	Stats     Stats
}

// Value returns the solved value of v scaled by its coefficient.
func (s *Solution) Value(v Variable) float64 {
	return v.Coef * s.Values[v.Index]
}

// Evaluate returns eq at the solution.
func (s *Solution) Evaluate(eq linalg.LinearEquation) float64 {
	return eq.Evaluate(s.Values)
}
