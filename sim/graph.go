package sim

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/bitset"
	"github.com/resource-sim/resource-sim/sim/internal/collections"
)

// PriorityBase maps converter priority p to objective weight PriorityBase^p.
// A priority span of ±10 covers about six orders of magnitude.
var PriorityBase = math.Pow(10, 0.6)

// GraphInventory is an inventory node, possibly the sum of several
// original inventories.
type GraphInventory struct {
	Resource  ResourceID
	Amount    float64
	MaxAmount float64
	State     InventoryState
	// ID is the smallest original index merged into this node.
	ID int
}

// MergeWith folds o into g. Inventories of different resources never
// merge; false is returned and neither node changes.
func (g *GraphInventory) MergeWith(o *GraphInventory) bool {
	if g.Resource != o.Resource {
		return false
	}
	g.Amount += o.Amount
	g.MaxAmount += o.MaxAmount
	g.State &= o.State
	g.ID = min(g.ID, o.ID)
	return true
}

// GraphConverter is a converter node, possibly the sum of several
// identical original converters.
type GraphConverter struct {
	ID          int
	Weight      float64
	Count       int // original converters sharing this node's rate
	Inputs      *collections.LinearMap[ResourceRatio]
	Outputs     *collections.LinearMap[ResourceRatio]
	Constraints *collections.LinearMap[ConstraintKind]
}

// CanMergeWith reports whether g and o describe the same machine: equal
// input, output and constraint maps, ratios and dump flags included.
func (g *GraphConverter) CanMergeWith(o *GraphConverter) bool {
	sameRatio := func(a, b ResourceRatio) bool { return a == b }
	return g.Inputs.EqualFunc(o.Inputs, sameRatio) &&
		g.Outputs.EqualFunc(o.Outputs, sameRatio) &&
		g.Constraints.EqualFunc(o.Constraints, func(a, b ConstraintKind) bool { return a == b })
}

// MergeWith folds o into g. Merging converters that fail CanMergeWith is
// a bug and panics.
func (g *GraphConverter) MergeWith(o *GraphConverter) {
	if !g.CanMergeWith(o) {
		logrus.WithFields(logrus.Fields{
			"converter": g.ID,
			"other":     o.ID,
		}).Panicf("sim: merging incompatible converters %d and %d", g.ID, o.ID)
	}
	g.Weight += o.Weight
	g.Count += o.Count
	g.ID = min(g.ID, o.ID)
}

// ResourceGraph is the bipartite converter/inventory graph of one solve.
// Node slices are indexed by original position; merged-away and excluded
// nodes are nil. Adjacency matrices have one row per converter and one
// column per inventory.
type ResourceGraph struct {
	Inventories []*GraphInventory
	Converters  []*GraphConverter

	InputEdges      *bitset.BitMatrix
	OutputEdges     *bitset.BitMatrix
	ConstraintEdges *bitset.BitMatrix

	// InventoryIDs and ConverterIDs map each original index to the index of
	// the node that now represents it. Excluded converters map to -1.
	InventoryIDs []int
	ConverterIDs []int

	original []Inventory
}

func toLinear[V any](m map[ResourceID]V) *collections.LinearMap[V] {
	src := make(map[int]V, len(m))
	for k, v := range m {
		src[int(k)] = v
	}
	return collections.LinearMapOf(src)
}

// activeConstraints returns the boundary constraints of c, or false when a
// disabled requirement excludes c from the graph. An Unset requirement is a
// caller bug and panics.
func activeConstraints(index int, c *Converter) (*collections.LinearMap[ConstraintKind], bool) {
	out := collections.NewLinearMap[ConstraintKind](len(c.Required))
	keys := toLinear(c.Required)
	for _, r := range keys.SortedKeys() {
		req, _ := keys.Get(r)
		switch req.State {
		case Unset:
			logrus.WithFields(logrus.Fields{
				"converter": index,
				"resource":  r,
			}).Panicf("sim: converter %d requirement on resource %d has no state", index, r)
		case Disabled:
			return nil, false
		case Boundary:
			out.Put(r, req.Constraint)
		}
	}
	return out, true
}

// BuildGraph indexes inventories and converters into a ResourceGraph.
// Converters must already carry their Pull, Push and Constrained sets.
func BuildGraph(inventories []Inventory, converters []Converter) *ResourceGraph {
	n, m := len(inventories), len(converters)
	g := &ResourceGraph{
		Inventories:     make([]*GraphInventory, n),
		Converters:      make([]*GraphConverter, m),
		InputEdges:      bitset.NewMatrix(m, n),
		OutputEdges:     bitset.NewMatrix(m, n),
		ConstraintEdges: bitset.NewMatrix(m, n),
		InventoryIDs:    make([]int, n),
		ConverterIDs:    make([]int, m),
		original:        slices.Clone(inventories),
	}
	for i, inv := range inventories {
		g.Inventories[i] = &GraphInventory{
			Resource:  inv.Resource,
			Amount:    inv.Amount,
			MaxAmount: inv.MaxAmount,
			State:     inv.State(),
			ID:        i,
		}
		g.InventoryIDs[i] = i
	}

	for c := range converters {
		conv := &converters[c]
		constraints, ok := activeConstraints(c, conv)
		if !ok {
			g.ConverterIDs[c] = -1
			continue
		}
		g.ConverterIDs[c] = c
		g.Converters[c] = &GraphConverter{
			ID:          c,
			Weight:      math.Pow(PriorityBase, float64(conv.Priority)),
			Count:       1,
			Inputs:      toLinear(conv.Inputs),
			Outputs:     toLinear(conv.Outputs),
			Constraints: constraints,
		}
		if conv.Pull != nil {
			g.InputEdges.SetRow(c, conv.Pull)
		}
		if conv.Push != nil {
			g.OutputEdges.SetRow(c, conv.Push)
		}
		if conv.Constrained != nil {
			for i := range conv.Constrained.All() {
				if constraints.Has(int(inventories[i].Resource)) {
					g.ConstraintEdges.Set(c, i)
				}
			}
		}
	}
	return g
}

func (g *ResourceGraph) activeInventories() *bitset.BitSet {
	s := bitset.New(len(g.Inventories))
	for i, inv := range g.Inventories {
		if inv != nil {
			s.Set(i)
		}
	}
	return s
}

func (g *ResourceGraph) activeConverters() *bitset.BitSet {
	s := bitset.New(len(g.Converters))
	for c, conv := range g.Converters {
		if conv != nil {
			s.Set(c)
		}
	}
	return s
}

// NumInventories returns the number of inventory nodes left.
func (g *ResourceGraph) NumInventories() int { return g.activeInventories().Count() }

// NumConverters returns the number of converter nodes left.
func (g *ResourceGraph) NumConverters() int { return g.activeConverters().Count() }

// MergeEquivalentInventories merges inventories of the same resource whose
// input, output and constraint columns are identical. It returns the
// number of inventories merged away.
func (g *ResourceGraph) MergeEquivalentInventories() int {
	n := len(g.Inventories)
	active := g.activeInventories()
	removed := bitset.New(n)
	candidates := bitset.New(n)
	for i := range n {
		if !active.Get(i) {
			continue
		}
		candidates.ClearAll()
		candidates.SetRange(i+1, n)
		candidates.And(active)
		g.InputEdges.RemoveUnequalColumns(i, candidates)
		g.OutputEdges.RemoveUnequalColumns(i, candidates)
		g.ConstraintEdges.RemoveUnequalColumns(i, candidates)

		for j := range candidates.All() {
			if !g.Inventories[i].MergeWith(g.Inventories[j]) {
				continue
			}
			for k, id := range g.InventoryIDs {
				if id == j {
					g.InventoryIDs[k] = i
				}
			}
			g.Inventories[j] = nil
			active.Clear(j)
			removed.Set(j)
		}
	}
	g.InputEdges.ClearColumns(removed)
	g.OutputEdges.ClearColumns(removed)
	g.ConstraintEdges.ClearColumns(removed)
	return removed.Count()
}

// MergeEquivalentConverters merges converters with identical adjacency
// rows that pass CanMergeWith. It returns the number merged away.
func (g *ResourceGraph) MergeEquivalentConverters() int {
	m := len(g.Converters)
	active := g.activeConverters()
	candidates := bitset.NewMatrix(m, m)
	candidates.FillUpperDiagonal()
	for c := range m {
		if !active.Get(c) {
			candidates.ClearRow(c)
			candidates.ClearColumn(c)
		}
	}
	candidates.RemoveUnequalRows(g.InputEdges)
	candidates.RemoveUnequalRows(g.OutputEdges)
	candidates.RemoveUnequalRows(g.ConstraintEdges)

	merged := 0
	for r := range m {
		if !active.Get(r) {
			continue
		}
		for c := range candidates.Row(r).All() {
			if !active.Get(c) || !g.Converters[r].CanMergeWith(g.Converters[c]) {
				continue
			}
			g.Converters[r].MergeWith(g.Converters[c])
			for k, id := range g.ConverterIDs {
				if id == c {
					g.ConverterIDs[k] = r
				}
			}
			g.Converters[c] = nil
			active.Clear(c)
			g.InputEdges.ClearRow(c)
			g.OutputEdges.ClearRow(c)
			g.ConstraintEdges.ClearRow(c)
			merged++
		}
	}
	return merged
}

// memberWeight is the share original inventory k takes of a merged rate:
// its stored amount when draining, its free capacity when filling.
func (g *ResourceGraph) memberWeight(k int, rate float64) float64 {
	inv := g.original[k]
	if rate < 0 {
		return max(inv.Amount, 0)
	}
	return max(inv.MaxAmount-inv.Amount, 0)
}
