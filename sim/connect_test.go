package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resource-sim/resource-sim/sim/bitset"
)

func TestConnectByResource_FillsNilSets(t *testing.T) {
	// GIVEN two fuel tanks, a battery, and a generator that burns fuel,
	// charges the battery, and requires the battery
	inventories := []Inventory{tank(1, 5, 10), tank(2, 0, 10), tank(1, 2, 10)}
	converters := []Converter{{
		Inputs:   ratios(map[ResourceID]float64{1: 1}),
		Outputs:  ratios(map[ResourceID]float64{2: 1}),
		Required: map[ResourceID]Requirement{2: {State: Boundary, Constraint: AtMost}},
	}}

	// WHEN connected by resource
	ConnectByResource(inventories, converters)

	// THEN each set holds the inventories of the matching resources
	assert.Equal(t, []int{0, 2}, converters[0].Pull.Indices())
	assert.Equal(t, []int{1}, converters[0].Push.Indices())
	assert.Equal(t, []int{1}, converters[0].Constrained.Indices())
}

func TestConnectByResource_KeepsExistingSetsAndHonorsFlowNone(t *testing.T) {
	inventories := []Inventory{tank(1, 5, 10), tank(1, 5, 10), tank(2, 0, 10)}
	pull := bitset.FromIndices(3, 1)
	converters := []Converter{{
		Inputs:  ratios(map[ResourceID]float64{1: 1}),
		Outputs: map[ResourceID]ResourceRatio{2: {Ratio: 1, FlowMode: FlowNone}},
		Pull:    pull,
	}}

	ConnectByResource(inventories, converters)

	assert.Same(t, pull, converters[0].Pull)
	assert.Equal(t, []int{1}, converters[0].Pull.Indices())
	assert.True(t, converters[0].Push.IsEmpty(), "FlowNone output must reach nothing")
	assert.True(t, converters[0].Constrained.IsEmpty())
}

func TestConnectByResource_UnknownResourceReachesNothing(t *testing.T) {
	inventories := []Inventory{tank(1, 5, 10)}
	converters := []Converter{machine(0, map[ResourceID]float64{7: 1}, nil)}

	ConnectByResource(inventories, converters)

	assert.True(t, converters[0].Pull.IsEmpty())
	assert.Equal(t, 1, converters[0].Pull.Len())
}
