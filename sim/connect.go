package sim

import "github.com/resource-sim/resource-sim/sim/bitset"

// ConnectByResource fills every nil Pull, Push and Constrained set with the
// inventories whose resource appears in the matching converter map. Inputs
// and outputs with FlowNone reach nothing. Sets that are already present
// are left alone.
func ConnectByResource(inventories []Inventory, converters []Converter) {
	byResource := make(map[ResourceID]*bitset.BitSet)
	for i, inv := range inventories {
		set, ok := byResource[inv.Resource]
		if !ok {
			set = bitset.New(len(inventories))
			byResource[inv.Resource] = set
		}
		set.Set(i)
	}
	flows := func(ratios map[ResourceID]ResourceRatio) *bitset.BitSet {
		out := bitset.New(len(inventories))
		for r, ratio := range ratios {
			if set, ok := byResource[r]; ok && ratio.FlowMode != FlowNone {
				out.Or(set)
			}
		}
		return out
	}

	for c := range converters {
		conv := &converters[c]
		if conv.Pull == nil {
			conv.Pull = flows(conv.Inputs)
		}
		if conv.Push == nil {
			conv.Push = flows(conv.Outputs)
		}
		if conv.Constrained == nil {
			conv.Constrained = bitset.New(len(inventories))
			for r := range conv.Required {
				if set, ok := byResource[r]; ok {
					conv.Constrained.Or(set)
				}
			}
		}
	}
}
