package sim

import (
	"fmt"
	"strings"

	"github.com/resource-sim/resource-sim/sim/bitset"
)

// ResourceID identifies a resource type (fuel, oxidizer, power, ...).
type ResourceID int

// FlowMode controls which inventories a converter may reach for a
// resource. Resolving modes against vehicle topology happens upstream;
// ConnectByResource only distinguishes vehicle-wide flow from none.
type FlowMode uint8

const (
	// FlowVehicle reaches every inventory holding the resource.
	FlowVehicle FlowMode = iota
	// FlowNone reaches no inventory.
	FlowNone
)

func (m FlowMode) String() string {
	switch m {
	case FlowVehicle:
		return "vehicle"
	case FlowNone:
		return "none"
	}
	return fmt.Sprintf("FlowMode(%d)", m)
}

// ResourceRatio is the per-unit-rate consumption or production of one
// resource by a converter.
type ResourceRatio struct {
	Ratio float64
	// DumpExcess lets an output be discarded when no inventory can take it.
	DumpExcess bool
	FlowMode   FlowMode
}

// ConstraintKind is the direction a required resource's net flow must
// take while its converter runs.
type ConstraintKind uint8

const (
	// AtLeast requires the net rate into the constrained inventories to be >= 0.
	AtLeast ConstraintKind = iota
	// AtMost requires the net rate into the constrained inventories to be <= 0.
	AtMost
)

func (k ConstraintKind) String() string {
	if k == AtMost {
		return "at_most"
	}
	return "at_least"
}

// RequirementState says whether a required resource currently restricts
// its converter.
type RequirementState uint8

const (
	// Unset is never valid input.
	Unset RequirementState = iota
	// Disabled removes the converter from the solve.
	Disabled
	// Enabled satisfies the requirement without any flow constraint.
	Enabled
	// Boundary applies the requirement's ConstraintKind.
	Boundary
)

func (s RequirementState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Boundary:
		return "boundary"
	}
	return "unset"
}

// Requirement is a converter's dependence on one resource.
type Requirement struct {
	State      RequirementState
	Constraint ConstraintKind
}

// InventoryState is a bit set of boundary flags.
type InventoryState uint8

const (
	// Unconstrained inventories can both fill and drain.
	Unconstrained InventoryState = 0
	// Empty inventories cannot drain further.
	Empty InventoryState = 1 << 0
	// Full inventories cannot fill further.
	Full InventoryState = 1 << 1
)

// Has reports whether every flag of f is set in s.
func (s InventoryState) Has(f InventoryState) bool { return s&f == f && f != 0 }

func (s InventoryState) String() string {
	if s == Unconstrained {
		return "unconstrained"
	}
	var parts []string
	if s.Has(Empty) {
		parts = append(parts, "empty")
	}
	if s.Has(Full) {
		parts = append(parts, "full")
	}
	return strings.Join(parts, "|")
}

// boundaryTolerance is the distance from 0 or capacity within which an
// inventory counts as empty or full.
const boundaryTolerance = 1e-9

// Inventory is a resource buffer. Callers keep 0 <= Amount <= MaxAmount.
type Inventory struct {
	Resource  ResourceID
	Amount    float64
	MaxAmount float64
}

// State derives the boundary flags from the current amount.
func (i Inventory) State() InventoryState {
	var s InventoryState
	tol := boundaryTolerance * max(1, i.MaxAmount)
	if i.Amount <= tol {
		s |= Empty
	}
	if i.Amount >= i.MaxAmount-tol {
		s |= Full
	}
	return s
}

// Converter is a machine that turns inputs into outputs at fixed ratios
// while running at a rate in [0, 1].
type Converter struct {
	Priority int
	Inputs   map[ResourceID]ResourceRatio
	Outputs  map[ResourceID]ResourceRatio
	Required map[ResourceID]Requirement

	// Pull, Push and Constrained hold inventory indices the converter can
	// draw from, deliver to, and is constrained by. ConnectByResource fills
	// nil sets.
	Pull        *bitset.BitSet
	Push        *bitset.BitSet
	Constrained *bitset.BitSet
}
