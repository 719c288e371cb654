// Package lp builds and solves the linear programs behind resource-flow
// steady states.
//
// A LinearProblem accumulates non-negative variables, equality and
// inequality constraints, and OR-disjunctions between two inequalities.
// Maximize runs presolve (forced-zero inference, partial row reduction,
// substitution of fixed and singleton variables), then either a single
// simplex solve or, when disjunctions survive presolve, a depth-first
// branch-and-bound search over the disjunction choices. Every returned
// solution is re-checked against the constraints as they were added.
//
// Undecided disjunctions are relaxed with the Big-M method:
//
//	lhs_l <= b_l + M·z
//	lhs_r <= b_r + M·(1-z)
//	z     <= 1
//
// with M = BigM.
package lp
