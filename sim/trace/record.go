// Package trace provides per-solve recording for background simulations.
// It stores pure data and does not import sim.
package trace

// SolveRecord captures one steady-state solve.
type SolveRecord struct {
	Clock       float64 // simulated seconds
	Inventories int     // graph inventories after merging
	Converters  int     // graph converters after merging
	Iterations  int
	Nodes       int
	Eliminated  int
	Truncated   bool
	Unsolvable  bool
	Reason      string // error text when the solve failed
}

// BoundaryRecord captures an inventory reaching empty or full.
type BoundaryRecord struct {
	Clock     float64
	Inventory int
	Full      bool // false means it ran empty
}
