package lp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsolvable is returned when the problem has no optimal solution.
	// Callers should match it with errors.Is; ErrInfeasible and ErrUnbounded
	// wrap it.
	ErrUnsolvable = errors.New("lp: problem is unsolvable")
	// ErrInfeasible reports an empty feasible region.
	ErrInfeasible = fmt.Errorf("%w: infeasible", ErrUnsolvable)
	// ErrUnbounded reports an objective that can grow without limit.
	ErrUnbounded = fmt.Errorf("%w: unbounded", ErrUnsolvable)
	// ErrIterationLimit is returned when a simplex solve exceeds
	// Options.MaxIterations pivots.
	ErrIterationLimit = errors.New("lp: simplex iteration limit reached")
	// ErrNodeLimit is returned when branch-and-bound exhausts
	// Options.MaxNodes before finding any feasible assignment.
	ErrNodeLimit = errors.New("lp: branch-and-bound node limit reached without a feasible solution")
)
