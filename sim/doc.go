// Package sim computes steady-state resource flow through a vehicle of
// inventories and converters.
//
// # Reading Guide
//
//   - types.go: Inventory, Converter and the requirement/flow enums
//   - graph.go: ResourceGraph, built per solve and shrunk by merging
//     equivalent inventories and converters
//   - solve.go: the LP formulation and Solve, which maps merged rates back
//     onto the original inventories
//   - simulator.go: BackgroundSimulator, which replays piecewise-constant
//     rates between changepoints
//
// # Architecture
//
// The LP machinery lives in sub-packages:
//   - sim/lp/: linear problems with disjunctions, presolve, simplex and
//     branch-and-bound
//   - sim/linalg/: dense tableau and sparse linear equations
//   - sim/bitset/: bit sets and bit matrices for graph adjacency
//   - sim/trace/: per-solve trace records
//
// Converter priority becomes objective weight PriorityBase^priority.
package sim
