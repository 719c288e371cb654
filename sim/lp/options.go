package lp

const (
	// DefaultMaxIterations caps simplex pivots per LP solve.
	DefaultMaxIterations = 1000
	// DefaultMaxNodes caps branch-and-bound nodes per Maximize call.
	DefaultMaxNodes = 4096
	// BigM is the relaxation constant for undecided disjunctions.
	BigM = 1e9
	// FeasibilityTolerance bounds how far a returned solution may violate
	// any constraint it was built from.
	FeasibilityTolerance = 1e-6
)

// Options tunes a LinearProblem. The zero value is ready to use.
type Options struct {
	// Trace logs problem dimensions and search progress at debug level.
	Trace bool
	// DisablePresolve skips presolve and hands the problem to the simplex
	// as written.
	DisablePresolve bool
	// MaxIterations caps simplex pivots per LP solve; <= 0 selects
	// DefaultMaxIterations.
	MaxIterations int
	// MaxNodes caps branch-and-bound nodes; 0 selects DefaultMaxNodes and a
	// negative value removes the cap.
	MaxNodes int
}

func (o Options) maxIterations() int {
	if o.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return o.MaxIterations
}

func (o Options) maxNodes() int {
	if o.MaxNodes == 0 {
		return DefaultMaxNodes
	}
	return o.MaxNodes
}
