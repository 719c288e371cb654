package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/linalg"
	"github.com/resource-sim/resource-sim/sim/lp"
)

// RateTolerance is the threshold below which a rate, either absolutely or
// relative to the largest rate of the solve, is reported as zero.
const RateTolerance = 1e-6

// SolveResult holds steady-state rates indexed like the Solve inputs.
// Inventory rates are net inflow per second: negative means draining.
type SolveResult struct {
	InventoryRates []float64
	ConverterRates []float64

	// Graph size after merging.
	GraphInventories int
	GraphConverters  int
	Stats            lp.Stats
}

// Solve computes the steady-state rate of every converter and the net flow
// into every inventory. Converters must carry their connectivity sets (see
// ConnectByResource). Errors wrap lp.ErrUnsolvable when no flow satisfies
// the constraints.
func Solve(inventories []Inventory, converters []Converter, opts SolverOptions) (*SolveResult, error) {
	g := BuildGraph(inventories, converters)
	mergedInv := g.MergeEquivalentInventories()
	mergedConv := g.MergeEquivalentConverters()
	if opts.Trace {
		logrus.Debugf("sim: graph %d inventories (%d merged), %d converters (%d merged)",
			g.NumInventories(), mergedInv, g.NumConverters(), mergedConv)
	}

	f := newFormulation(g, opts.lpOptions())
	sol, err := f.p.Maximize(f.objective)
	if err != nil {
		return nil, fmt.Errorf("sim: solving %d converters over %d inventories: %w",
			len(converters), len(inventories), err)
	}

	invRates := make([]float64, len(g.Inventories))
	convRates := make([]float64, len(g.Converters))
	for i, net := range f.net {
		if g.Inventories[i] != nil {
			invRates[i] = sol.Evaluate(net)
		}
	}
	for c, x := range f.rates {
		if g.Converters[c] != nil {
			convRates[c] = sol.Value(x)
		}
	}
	zeroTinyRates(invRates, convRates)

	res := &SolveResult{
		InventoryRates:   g.apportionInventoryRates(invRates),
		ConverterRates:   make([]float64, len(converters)),
		GraphInventories: g.NumInventories(),
		GraphConverters:  g.NumConverters(),
		Stats:            sol.Stats,
	}
	for c, id := range g.ConverterIDs {
		if id >= 0 {
			res.ConverterRates[c] = convRates[id]
		}
	}
	return res, nil
}

// formulation is the LP built from a merged graph.
type formulation struct {
	p         *lp.LinearProblem
	rates     []lp.Variable           // per converter node
	net       []linalg.LinearEquation // net inflow per inventory node
	objective linalg.LinearEquation
}

func newFormulation(g *ResourceGraph, opts lp.Options) *formulation {
	f := &formulation{
		p:     lp.NewLinearProblem(opts),
		rates: make([]lp.Variable, len(g.Converters)),
		net:   make([]linalg.LinearEquation, len(g.Inventories)),
	}
	var objective []lp.Variable
	for c, conv := range g.Converters {
		if conv == nil {
			continue
		}
		x := f.p.CreateVariable()
		f.rates[c] = x
		f.p.AddConstraint(x.AtMost(1))
		objective = append(objective, x.Mul(conv.Weight))
	}
	f.objective = lp.Sum(objective...)

	for c, conv := range g.Converters {
		if conv == nil {
			continue
		}
		x := f.rates[c]
		scale := float64(conv.Count)
		conv.Inputs.Each(func(r int, ratio ResourceRatio) bool {
			flows := f.flowVariables(g, g.InputEdges.Row(c).Indices(), ResourceID(r), -1)
			f.p.AddConstraint(lp.Equals(flows.Sum().Sub(x.Mul(scale*ratio.Ratio).Equation()), 0))
			return true
		})
		conv.Outputs.Each(func(r int, ratio ResourceRatio) bool {
			flows := f.flowVariables(g, g.OutputEdges.Row(c).Indices(), ResourceID(r), 1)
			balance := flows.Sum().Sub(x.Mul(scale*ratio.Ratio).Equation())
			if ratio.DumpExcess {
				f.p.AddConstraint(lp.LessEq(balance, 0))
			} else {
				f.p.AddConstraint(lp.Equals(balance, 0))
			}
			return true
		})
	}

	for i, inv := range g.Inventories {
		if inv == nil {
			continue
		}
		if inv.State.Has(Full) {
			f.p.AddConstraint(lp.LessEq(f.net[i], 0))
		}
		if inv.State.Has(Empty) {
			f.p.AddConstraint(lp.GreaterEq(f.net[i], 0))
		}
	}

	for c, conv := range g.Converters {
		if conv == nil {
			continue
		}
		off := f.rates[c].AtMost(0)
		edges := g.ConstraintEdges.Row(c)
		conv.Constraints.Each(func(r int, kind ConstraintKind) bool {
			var sum linalg.LinearEquation
			for i := range edges.All() {
				if g.Inventories[i] != nil && g.Inventories[i].Resource == ResourceID(r) {
					sum = sum.Add(f.net[i])
				}
			}
			if kind == AtLeast {
				f.p.AddOrConstraint(off, lp.GreaterEq(sum, 0))
			} else {
				f.p.AddOrConstraint(off, lp.LessEq(sum, 0))
			}
			return true
		})
	}
	return f
}

// flowVariables allocates one flow variable per connected inventory holding
// resource r and adds sign·flow to each inventory's net rate.
func (f *formulation) flowVariables(g *ResourceGraph, edges []int, r ResourceID, sign float64) lp.VariableSet {
	var targets []int
	for _, i := range edges {
		if inv := g.Inventories[i]; inv != nil && inv.Resource == r {
			targets = append(targets, i)
		}
	}
	vars := f.p.CreateVariables(len(targets))
	for k, i := range targets {
		f.net[i] = f.net[i].AddTerm(vars.At(k).Index, sign)
	}
	return vars
}

// zeroTinyRates clears rates that are negligible in absolute terms or next
// to the largest rate of the solve.
func zeroTinyRates(sets ...[]float64) {
	norm := 0.0
	for _, s := range sets {
		for _, v := range s {
			norm = math.Max(norm, math.Abs(v))
		}
	}
	for _, s := range sets {
		for i, v := range s {
			if math.Abs(v) < RateTolerance || math.Abs(v) <= RateTolerance*norm {
				s[i] = 0
			}
		}
	}
}

// apportionInventoryRates spreads each merged inventory's rate over its
// original members: by stored amount when draining and by free capacity
// when filling. Member rates sum exactly to the merged rate.
func (g *ResourceGraph) apportionInventoryRates(merged []float64) []float64 {
	out := make([]float64, len(g.InventoryIDs))
	members := make(map[int][]int, len(g.Inventories))
	for k, id := range g.InventoryIDs {
		members[id] = append(members[id], k)
	}
	for id, ks := range members {
		rate := merged[id]
		if rate == 0 {
			continue
		}
		if len(ks) == 1 {
			out[ks[0]] = rate
			continue
		}
		weights := make([]float64, len(ks))
		total := 0.0
		for n, k := range ks {
			w := g.memberWeight(k, rate)
			weights[n] = w
			total += w
		}
		if total <= 0 {
			logrus.Warnf("sim: inventory %d has rate %g but no member can absorb it; splitting evenly", id, rate)
			for n := range weights {
				weights[n] = 1
			}
			total = float64(len(weights))
		}
		assigned := 0.0
		for n, k := range ks {
			if n == len(ks)-1 {
				out[k] = rate - assigned
				break
			}
			out[k] = rate * weights[n] / total
			assigned += out[k]
		}
	}
	return out
}
