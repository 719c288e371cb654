package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resource-sim/resource-sim/sim"
	"github.com/resource-sim/resource-sim/sim/trace"
)

var (
	vehiclePath     string  // Vehicle YAML file
	logLevel        string  // Log verbosity level
	traceSolves     bool    // Debug-log solver dimensions, record simulation solves
	noPresolve      bool    // Skip presolve
	maxIterations   int     // Simplex pivot cap per LP
	maxNodes        int     // Branch-and-bound node cap
	printMetrics    bool    // Print prometheus metrics after the run
	horizon         float64 // Background simulation horizon (seconds)
	maxChangepoints int     // Background simulation solve cap
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "resource-sim",
	Short: "Steady-state resource flow solver for vehicles of converters and inventories",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// solveCmd solves a vehicle once and prints the rates
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute steady-state rates for a vehicle",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadVehicle()
		if err := runSolve(cmd.OutOrStdout(), cfg, solverOptions(cmd, cfg), newMetrics()); err != nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
	},
}

// simulateCmd runs the background simulator up to the horizon
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Advance a vehicle through time with piecewise-constant rates",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadVehicle()
		bg := sim.BackgroundConfig{
			Horizon:         horizon,
			MaxChangepoints: maxChangepoints,
			Solver:          solverOptions(cmd, cfg),
			TraceSolves:     traceSolves,
		}
		if err := runSimulate(cmd.OutOrStdout(), cfg, bg, newMetrics()); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

func mustLoadVehicle() *VehicleConfig {
	if vehiclePath == "" {
		logrus.Fatalf("Vehicle file not provided (--vehicle)")
	}
	cfg, err := LoadVehicle(vehiclePath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return cfg
}

func newMetrics() *sim.Metrics {
	if !printMetrics {
		return nil
	}
	return sim.NewMetrics()
}

// solverOptions starts from the vehicle's solver section and applies the
// flags the user set explicitly.
func solverOptions(cmd *cobra.Command, cfg *VehicleConfig) sim.SolverOptions {
	opts := cfg.SolverOptions()
	opts.Trace = traceSolves
	flags := cmd.Flags()
	if flags.Changed("no-presolve") {
		opts.DisablePresolve = noPresolve
	}
	if flags.Changed("max-iterations") {
		opts.MaxIterations = maxIterations
	}
	if flags.Changed("max-nodes") {
		opts.MaxNodes = maxNodes
	}
	return opts
}

// runSolve prints one steady state. metrics may be nil.
func runSolve(w io.Writer, cfg *VehicleConfig, opts sim.SolverOptions, metrics *sim.Metrics) error {
	inventories, converters, err := cfg.Build()
	if err != nil {
		return err
	}

	startTime := time.Now()
	res, err := sim.Solve(inventories, converters, opts)
	metrics.ObserveSolve(res, err)
	if err != nil {
		return err
	}
	logrus.Infof("Solved %d converters over %d inventories in %v (%d pivots, %d nodes)",
		len(converters), len(inventories), time.Since(startTime), res.Stats.Iterations, res.Stats.Nodes)

	fmt.Fprintln(w, "=== Steady State ===")
	for i, inv := range inventories {
		fmt.Fprintf(w, "inventory %-3d resource %-3d amount %10.4f/%-10.4f rate %+.6f\n",
			i, inv.Resource, inv.Amount, inv.MaxAmount, res.InventoryRates[i])
	}
	for c := range converters {
		fmt.Fprintf(w, "converter %-3d rate %.6f\n", c, res.ConverterRates[c])
	}
	if res.Stats.Truncated {
		fmt.Fprintln(w, "note: node limit reached, rates may be suboptimal")
	}
	if metrics != nil {
		return metrics.Print(w)
	}
	return nil
}

func runSimulate(w io.Writer, cfg *VehicleConfig, bg sim.BackgroundConfig, metrics *sim.Metrics) error {
	inventories, converters, err := cfg.Build()
	if err != nil {
		return err
	}
	s, err := sim.NewBackgroundSimulator(inventories, converters, bg, metrics)
	if err != nil {
		return err
	}
	logrus.Infof("Starting background simulation, horizon=%gs", bg.Horizon)
	runErr := s.Run()

	fmt.Fprintf(w, "=== Background Simulation (t=%g s, %d changepoints) ===\n", s.Clock, s.Changepoints)
	if s.Unsolvable {
		fmt.Fprintln(w, "vehicle became unsolvable; flow stopped")
	}
	for i, inv := range s.Inventories {
		fmt.Fprintf(w, "inventory %-3d resource %-3d amount %10.4f/%-10.4f %s\n",
			i, inv.Resource, inv.Amount, inv.MaxAmount, inv.State())
	}
	if s.Trace.Enabled() {
		summary := trace.Summarize(s.Trace)
		fmt.Fprintf(w, "solves: %d (unsolvable %d, truncated %d), mean pivots %.1f, max nodes %d\n",
			summary.TotalSolves, summary.UnsolvableSolves, summary.TruncatedSolves,
			summary.MeanIterations, summary.MaxNodes)
		for _, b := range s.Trace.Boundaries {
			what := "empty"
			if b.Full {
				what = "full"
			}
			fmt.Fprintf(w, "t=%-12g inventory %d %s\n", b.Clock, b.Inventory, what)
		}
	}
	if runErr != nil {
		return runErr
	}
	if metrics != nil {
		return metrics.Print(w)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&vehiclePath, "vehicle", "", "Vehicle YAML file")
	flags.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.BoolVar(&traceSolves, "trace", false, "Log solver dimensions and record every simulation solve")
	flags.BoolVar(&noPresolve, "no-presolve", false, "Hand the LP to the simplex without presolve")
	flags.IntVar(&maxIterations, "max-iterations", 0, "Simplex pivots per LP (0 = default 1000)")
	flags.IntVar(&maxNodes, "max-nodes", 0, "Branch-and-bound nodes (0 = default 4096, negative = unlimited)")
	flags.BoolVar(&printMetrics, "metrics", false, "Print prometheus metrics after the run")

	simulateCmd.Flags().Float64Var(&horizon, "horizon", 3600, "Simulation horizon (seconds)")
	simulateCmd.Flags().IntVar(&maxChangepoints, "max-changepoints", sim.DefaultMaxChangepoints, "Solves before giving up")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(simulateCmd)
}
