package sim

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim/internal/testutil"
)

const rateTol = 1e-9

func TestSolve_SingleProducer(t *testing.T) {
	for _, mode := range solverModes {
		t.Run(mode.name, func(t *testing.T) {
			// GIVEN an empty tank and a producer of ratio 2 with no inputs
			inventories := []Inventory{tank(1, 0, 10)}
			converters := []Converter{machine(0, nil, map[ResourceID]float64{1: 2})}

			// WHEN solved
			res := solveConnected(t, inventories, converters, mode.opts)

			// THEN the producer runs flat out and the tank fills at its ratio
			testutil.AssertFloat64Equal(t, "converter rate", 1, res.ConverterRates[0], rateTol)
			testutil.AssertFloat64Equal(t, "inventory rate", 2, res.InventoryRates[0], rateTol)
		})
	}
}

func TestSolve_Chain(t *testing.T) {
	for _, mode := range solverModes {
		t.Run(mode.name, func(t *testing.T) {
			// GIVEN a full fuel tank, an empty battery, and a generator
			// burning 1 fuel into 2 power
			inventories := []Inventory{tank(1, 10, 10), tank(2, 0, 5)}
			converters := []Converter{machine(0, map[ResourceID]float64{1: 1}, map[ResourceID]float64{2: 2})}

			res := solveConnected(t, inventories, converters, mode.opts)

			testutil.AssertFloat64Equal(t, "generator", 1, res.ConverterRates[0], rateTol)
			testutil.AssertFloat64Equal(t, "fuel", -1, res.InventoryRates[0], rateTol)
			testutil.AssertFloat64Equal(t, "power", 2, res.InventoryRates[1], rateTol)
		})
	}
}

func TestSolve_BoundaryStates(t *testing.T) {
	tests := []struct {
		name       string
		inventory  Inventory
		converter  Converter
		wantConv   float64
		wantInvRat float64
	}{
		{
			name:      "consumer of an empty tank stalls",
			inventory: tank(1, 0, 10),
			converter: machine(0, map[ResourceID]float64{1: 1}, nil),
		},
		{
			name:      "producer into a full tank stalls",
			inventory: tank(1, 10, 10),
			converter: machine(0, nil, map[ResourceID]float64{1: 1}),
		},
		{
			name:      "producer dumping excess keeps running",
			inventory: tank(1, 10, 10),
			converter: Converter{Outputs: map[ResourceID]ResourceRatio{1: {Ratio: 1, DumpExcess: true}}},
			wantConv:  1,
		},
		{
			name:       "consumer of a partial tank drains it",
			inventory:  tank(1, 3, 10),
			converter:  machine(0, map[ResourceID]float64{1: 0.5}, nil),
			wantConv:   1,
			wantInvRat: -0.5,
		},
	}
	for _, tc := range tests {
		for _, mode := range solverModes {
			t.Run(tc.name+"/"+mode.name, func(t *testing.T) {
				res := solveConnected(t, []Inventory{tc.inventory}, []Converter{tc.converter}, mode.opts)
				testutil.AssertNear(t, "converter", tc.wantConv, res.ConverterRates[0], rateTol)
				testutil.AssertNear(t, "inventory", tc.wantInvRat, res.InventoryRates[0], rateTol)
			})
		}
	}
}

func TestSolve_PriorityDecidesSharedSupply(t *testing.T) {
	for _, mode := range solverModes {
		t.Run(mode.name, func(t *testing.T) {
			// GIVEN an empty buffer fed by one producer and drained by a
			// high-priority and a low-priority consumer
			inventories := []Inventory{tank(1, 0, 10)}
			converters := []Converter{
				machine(0, nil, map[ResourceID]float64{1: 1}),
				machine(1, map[ResourceID]float64{1: 1}, nil),
				machine(0, map[ResourceID]float64{1: 2}, nil),
			}

			res := solveConnected(t, inventories, converters, mode.opts)

			// THEN the whole supply goes to the high-priority consumer
			testutil.AssertNear(t, "producer", 1, res.ConverterRates[0], rateTol)
			testutil.AssertNear(t, "high priority", 1, res.ConverterRates[1], rateTol)
			testutil.AssertNear(t, "low priority", 0, res.ConverterRates[2], rateTol)
			testutil.AssertNear(t, "buffer", 0, res.InventoryRates[0], rateTol)
		})
	}
}

func TestSolve_RequiredResource(t *testing.T) {
	consumer := func(state RequirementState, kind ConstraintKind) Converter {
		c := machine(0, map[ResourceID]float64{2: 1}, nil)
		c.Required = map[ResourceID]Requirement{2: {State: state, Constraint: kind}}
		return c
	}
	producer := machine(0, nil, map[ResourceID]float64{2: 2})

	tests := []struct {
		name       string
		converters []Converter
		want       []float64
		wantNet    float64
	}{
		{"at least blocks a lone drain", []Converter{consumer(Boundary, AtLeast)}, []float64{0}, 0},
		{"at least allows a net inflow", []Converter{consumer(Boundary, AtLeast), producer}, []float64{1, 1}, 1},
		{"at most throttles the producer", []Converter{consumer(Boundary, AtMost), producer}, []float64{1, 0.5}, 0},
		{"enabled imposes nothing", []Converter{consumer(Enabled, AtLeast)}, []float64{1}, -1},
		{"disabled removes the consumer", []Converter{consumer(Disabled, AtLeast), producer}, []float64{0, 1}, 2},
	}
	for _, tc := range tests {
		for _, mode := range solverModes {
			t.Run(tc.name+"/"+mode.name, func(t *testing.T) {
				res := solveConnected(t, []Inventory{tank(2, 5, 10)}, tc.converters, mode.opts)
				for c, want := range tc.want {
					testutil.AssertNear(t, "converter", want, res.ConverterRates[c], rateTol)
				}
				testutil.AssertNear(t, "battery", tc.wantNet, res.InventoryRates[0], rateTol)
			})
		}
	}
}

func TestSolve_MergedConvertersShareRate(t *testing.T) {
	inventories := []Inventory{tank(1, 5, 10)}
	converters := []Converter{
		machine(0, nil, map[ResourceID]float64{1: 1}),
		machine(0, nil, map[ResourceID]float64{1: 1}),
	}

	res := solveConnected(t, inventories, converters, SolverOptions{})

	assert.Equal(t, 1, res.GraphConverters)
	testutil.AssertFloat64Equal(t, "first", 1, res.ConverterRates[0], rateTol)
	testutil.AssertFloat64Equal(t, "second", 1, res.ConverterRates[1], rateTol)
	testutil.AssertFloat64Equal(t, "tank", 2, res.InventoryRates[0], rateTol)
}

func TestSolve_ApportionsMergedInventories(t *testing.T) {
	tests := []struct {
		name   string
		conv   Converter
		merged float64
		want   []float64
	}{
		// amounts 2 and 6
		{"drain by amount", machine(0, map[ResourceID]float64{1: 1}, nil), -1, []float64{-0.25, -0.75}},
		// headroom 8 and 4
		{"fill by headroom", machine(0, nil, map[ResourceID]float64{1: 1}), 1, []float64{2.0 / 3, 1.0 / 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inventories := []Inventory{tank(1, 2, 10), tank(1, 6, 10)}

			res := solveConnected(t, inventories, []Converter{tc.conv}, SolverOptions{})

			assert.Equal(t, 1, res.GraphInventories)
			for i, want := range tc.want {
				testutil.AssertFloat64Equal(t, "member", want, res.InventoryRates[i], 1e-9)
			}
			testutil.AssertSum(t, "members", tc.merged, res.InventoryRates, 1e-12)
		})
	}
}

func TestApportionInventoryRates_ZeroWeightSplitsEvenlyWithWarning(t *testing.T) {
	// GIVEN a merged node whose members are all empty but asked to drain
	g := BuildGraph([]Inventory{tank(1, 0, 10), tank(1, 0, 10)}, nil)
	g.MergeEquivalentInventories()
	hook := logtest.NewGlobal()
	defer hook.Reset()

	// WHEN the rate is apportioned
	out := g.apportionInventoryRates([]float64{-1, 0})

	// THEN members split it evenly and a warning is logged
	assert.Equal(t, []float64{-0.5, -0.5}, out)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSolve_Disconnected(t *testing.T) {
	// Converters without connectivity sets reach nothing: an input with no
	// inventory forces the converter off, an output without one needs dumping.
	inventories := []Inventory{tank(1, 5, 10)}
	converters := []Converter{
		machine(0, map[ResourceID]float64{1: 1}, nil),
		{Outputs: map[ResourceID]ResourceRatio{1: {Ratio: 1, DumpExcess: true}}},
	}

	res, err := Solve(inventories, converters, SolverOptions{})

	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, res.ConverterRates, rateTol)
	assert.InDeltaSlice(t, []float64{0}, res.InventoryRates, rateTol)
}

func TestZeroTinyRates(t *testing.T) {
	a := []float64{1e-7, 5, -3e-6}
	b := []float64{1e3, -1e-4}

	zeroTinyRates(a, b)

	assert.Equal(t, []float64{0, 5, 0}, a)
	assert.Equal(t, []float64{1e3, 0}, b)
}
