package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/bitset"
)

// VehicleConfig represents a vehicle YAML file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type VehicleConfig struct {
	Inventories []InventorySpec `yaml:"inventories"`
	Converters  []ConverterSpec `yaml:"converters"`
	Solver      SolverSpec      `yaml:"solver"`
}

type InventorySpec struct {
	Resource int     `yaml:"resource"`
	Amount   float64 `yaml:"amount"`
	Max      float64 `yaml:"max"`
}

type RatioSpec struct {
	Ratio      float64 `yaml:"ratio"`
	DumpExcess bool    `yaml:"dump_excess"`
	Flow       string  `yaml:"flow"` // vehicle (default) or none
}

type RequirementSpec struct {
	State      string `yaml:"state"`      // disabled, enabled or boundary
	Constraint string `yaml:"constraint"` // at_least (default) or at_most
}

// ConverterSpec describes one converter. Omitted pull/push/constrained
// lists connect by resource across the whole vehicle.
type ConverterSpec struct {
	Priority    int                     `yaml:"priority"`
	Inputs      map[int]RatioSpec       `yaml:"inputs"`
	Outputs     map[int]RatioSpec       `yaml:"outputs"`
	Required    map[int]RequirementSpec `yaml:"required"`
	Pull        []int                   `yaml:"pull"`
	Push        []int                   `yaml:"push"`
	Constrained []int                   `yaml:"constrained"`
}

// SolverSpec holds solver defaults; command-line flags override them.
type SolverSpec struct {
	MaxIterations int   `yaml:"max_iterations"`
	MaxNodes      int   `yaml:"max_nodes"`
	Presolve      *bool `yaml:"presolve"`
}

// LoadVehicle reads and strictly parses a vehicle file.
func LoadVehicle(path string) (*VehicleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vehicle file: %w", err)
	}
	cfg, err := parseVehicle(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing vehicle %s: %w", path, err)
	}
	return cfg, nil
}

func parseVehicle(r io.Reader) (*VehicleConfig, error) {
	var cfg VehicleConfig
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Build converts the config into solver inputs. Converters without explicit
// connectivity are connected by resource.
func (c *VehicleConfig) Build() ([]sim.Inventory, []sim.Converter, error) {
	n := len(c.Inventories)
	inventories := make([]sim.Inventory, n)
	for i, spec := range c.Inventories {
		if spec.Max < 0 || spec.Amount < 0 || spec.Amount > spec.Max {
			return nil, nil, fmt.Errorf("inventory %d: amount %g outside [0, %g]", i, spec.Amount, spec.Max)
		}
		inventories[i] = sim.Inventory{
			Resource:  sim.ResourceID(spec.Resource),
			Amount:    spec.Amount,
			MaxAmount: spec.Max,
		}
	}

	converters := make([]sim.Converter, len(c.Converters))
	for k, spec := range c.Converters {
		conv, err := spec.build(n)
		if err != nil {
			return nil, nil, fmt.Errorf("converter %d: %w", k, err)
		}
		converters[k] = conv
	}
	sim.ConnectByResource(inventories, converters)
	return inventories, converters, nil
}

func (s ConverterSpec) build(n int) (sim.Converter, error) {
	conv := sim.Converter{Priority: s.Priority}
	var err error
	if conv.Inputs, err = buildRatios(s.Inputs); err != nil {
		return conv, fmt.Errorf("inputs: %w", err)
	}
	if conv.Outputs, err = buildRatios(s.Outputs); err != nil {
		return conv, fmt.Errorf("outputs: %w", err)
	}
	conv.Required = make(map[sim.ResourceID]sim.Requirement, len(s.Required))
	for r, req := range s.Required {
		parsed, err := buildRequirement(req)
		if err != nil {
			return conv, fmt.Errorf("required resource %d: %w", r, err)
		}
		conv.Required[sim.ResourceID(r)] = parsed
	}
	if conv.Pull, err = buildSet(n, s.Pull); err != nil {
		return conv, fmt.Errorf("pull: %w", err)
	}
	if conv.Push, err = buildSet(n, s.Push); err != nil {
		return conv, fmt.Errorf("push: %w", err)
	}
	if conv.Constrained, err = buildSet(n, s.Constrained); err != nil {
		return conv, fmt.Errorf("constrained: %w", err)
	}
	return conv, nil
}

func buildRatios(specs map[int]RatioSpec) (map[sim.ResourceID]sim.ResourceRatio, error) {
	out := make(map[sim.ResourceID]sim.ResourceRatio, len(specs))
	for r, spec := range specs {
		if spec.Ratio < 0 {
			return nil, fmt.Errorf("resource %d: negative ratio %g", r, spec.Ratio)
		}
		ratio := sim.ResourceRatio{Ratio: spec.Ratio, DumpExcess: spec.DumpExcess}
		switch spec.Flow {
		case "", "vehicle":
			ratio.FlowMode = sim.FlowVehicle
		case "none":
			ratio.FlowMode = sim.FlowNone
		default:
			return nil, fmt.Errorf("resource %d: unknown flow mode %q", r, spec.Flow)
		}
		out[sim.ResourceID(r)] = ratio
	}
	return out, nil
}

func buildRequirement(spec RequirementSpec) (sim.Requirement, error) {
	var req sim.Requirement
	switch spec.State {
	case "disabled":
		req.State = sim.Disabled
	case "enabled":
		req.State = sim.Enabled
	case "boundary":
		req.State = sim.Boundary
	default:
		return req, fmt.Errorf("state must be disabled, enabled or boundary, got %q", spec.State)
	}
	switch spec.Constraint {
	case "", "at_least":
		req.Constraint = sim.AtLeast
	case "at_most":
		req.Constraint = sim.AtMost
	default:
		return req, fmt.Errorf("unknown constraint %q", spec.Constraint)
	}
	return req, nil
}

// buildSet returns nil for an omitted list so ConnectByResource fills it.
func buildSet(n int, indices []int) (*bitset.BitSet, error) {
	if indices == nil {
		return nil, nil
	}
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("inventory index %d out of range [0, %d)", i, n)
		}
	}
	return bitset.FromIndices(n, indices...), nil
}

// SolverOptions returns the solver section as sim.SolverOptions.
func (c *VehicleConfig) SolverOptions() sim.SolverOptions {
	opts := sim.SolverOptions{
		MaxIterations: c.Solver.MaxIterations,
		MaxNodes:      c.Solver.MaxNodes,
	}
	if c.Solver.Presolve != nil {
		opts.DisablePresolve = !*c.Solver.Presolve
	}
	return opts
}
