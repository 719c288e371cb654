package sim

import "github.com/resource-sim/resource-sim/sim/lp"

// SolverOptions tunes a single Solve call. The zero value is ready to use.
type SolverOptions struct {
	Trace           bool // log graph and LP dimensions at debug level
	DisablePresolve bool // hand the LP to the simplex as built
	MaxIterations   int  // simplex pivots per LP (0 = lp.DefaultMaxIterations)
	MaxNodes        int  // branch-and-bound nodes (0 = lp.DefaultMaxNodes, < 0 = unlimited)
}

func (o SolverOptions) lpOptions() lp.Options {
	return lp.Options{
		Trace:           o.Trace,
		DisablePresolve: o.DisablePresolve,
		MaxIterations:   o.MaxIterations,
		MaxNodes:        o.MaxNodes,
	}
}

// DefaultMaxChangepoints bounds the solves of one background simulation.
const DefaultMaxChangepoints = 10000

// BackgroundConfig groups background simulation parameters.
type BackgroundConfig struct {
	Horizon         float64 // simulated seconds (must be >= 0)
	MaxChangepoints int     // solves before giving up (0 = DefaultMaxChangepoints)
	Solver          SolverOptions
	TraceSolves     bool // record every solve in BackgroundSimulator.Trace
}

func (c BackgroundConfig) maxChangepoints() int {
	if c.MaxChangepoints <= 0 {
		return DefaultMaxChangepoints
	}
	return c.MaxChangepoints
}
