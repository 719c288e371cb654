package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// tank builds an inventory of resource r.
func tank(r ResourceID, amount, maxAmount float64) Inventory {
	return Inventory{Resource: r, Amount: amount, MaxAmount: maxAmount}
}

// ratios turns a resource → ratio map into vehicle-flow ResourceRatios.
func ratios(m map[ResourceID]float64) map[ResourceID]ResourceRatio {
	out := make(map[ResourceID]ResourceRatio, len(m))
	for r, v := range m {
		out[r] = ResourceRatio{Ratio: v}
	}
	return out
}

// machine builds a converter without requirements.
func machine(priority int, inputs, outputs map[ResourceID]float64) Converter {
	return Converter{
		Priority: priority,
		Inputs:   ratios(inputs),
		Outputs:  ratios(outputs),
	}
}

// solveConnected connects converters by resource and solves, failing the
// test on error.
func solveConnected(t *testing.T, inventories []Inventory, converters []Converter, opts SolverOptions) *SolveResult {
	t.Helper()
	ConnectByResource(inventories, converters)
	res, err := Solve(inventories, converters, opts)
	require.NoError(t, err)
	require.Len(t, res.InventoryRates, len(inventories))
	require.Len(t, res.ConverterRates, len(converters))
	return res
}

var solverModes = []struct {
	name string
	opts SolverOptions
}{
	{"presolve", SolverOptions{}},
	{"no presolve", SolverOptions{DisablePresolve: true}},
}
