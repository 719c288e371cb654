package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim"
)

func loadFixture(t *testing.T, name string) *VehicleConfig {
	t.Helper()
	cfg, err := LoadVehicle(vehiclesDir + name)
	require.NoError(t, err)
	return cfg
}

func TestRunSolve_PrintsRates(t *testing.T) {
	// GIVEN a charger and a drill that may not run on net inflow
	cfg := loadFixture(t, "throttled.yaml")
	var buf bytes.Buffer

	// WHEN solved
	err := runSolve(&buf, cfg, cfg.SolverOptions(), nil)

	// THEN the drill runs and the charger throttles to half
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "=== Steady State ===")
	assert.Contains(t, out, "converter 0   rate 1.000000")
	assert.Contains(t, out, "converter 1   rate 0.500000")
	assert.NotContains(t, out, "resource_sim_", "metrics are opt-in")
}

func TestRunSolve_MergedStation(t *testing.T) {
	cfg := loadFixture(t, "station.yaml")
	var buf bytes.Buffer

	require.NoError(t, runSolve(&buf, cfg, cfg.SolverOptions(), sim.NewMetrics()))

	out := buf.String()
	// fuel drains by stored amount: 40 and 10 of 50
	assert.Contains(t, out, "rate -0.800000")
	assert.Contains(t, out, "rate -0.200000")
	assert.Contains(t, out, "rate +1.750000")
	assert.Contains(t, out, "converter 2   rate 1.000000")
	assert.Contains(t, out, `resource_sim_solves_total{outcome="optimal"} 1`)
}

func TestRunSimulate_Generator(t *testing.T) {
	cfg := loadFixture(t, "generator.yaml")
	var buf bytes.Buffer
	bg := sim.BackgroundConfig{Horizon: 100, Solver: cfg.SolverOptions(), TraceSolves: true}

	require.NoError(t, runSimulate(&buf, cfg, bg, nil))

	out := buf.String()
	assert.Contains(t, out, "(t=100 s, 2 changepoints)")
	assert.Contains(t, out, "inventory 0 empty")
	assert.Contains(t, out, "solves: 2 (unsolvable 0, truncated 0)")
}

func TestRunSimulate_ChangepointLimitIsAnError(t *testing.T) {
	cfg := loadFixture(t, "generator.yaml")
	var buf bytes.Buffer
	bg := sim.BackgroundConfig{Horizon: 100, MaxChangepoints: 1}

	err := runSimulate(&buf, cfg, bg, nil)

	assert.ErrorIs(t, err, sim.ErrChangepointLimit)
	assert.Contains(t, buf.String(), "(t=10 s, 1 changepoints)")
}

func TestSolverOptions_FlagsOverrideFile(t *testing.T) {
	cfg := loadFixture(t, "generator.yaml")
	defer func() { maxNodes, noPresolve = 0, false }()

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "")
	cmd.Flags().BoolVar(&noPresolve, "no-presolve", false, "")
	require.NoError(t, cmd.Flags().Set("max-nodes", "-1"))
	require.NoError(t, cmd.Flags().Set("no-presolve", "true"))

	opts := solverOptions(cmd, cfg)

	assert.Equal(t, -1, opts.MaxNodes)
	assert.True(t, opts.DisablePresolve)
	assert.Equal(t, 1000, opts.MaxIterations, "unset flags keep the file's value")
}
