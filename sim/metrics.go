package sim

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/resource-sim/resource-sim/sim/lp"
)

// Metrics aggregates solver and background-simulation statistics on a
// private prometheus registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Solves         *prometheus.CounterVec // by outcome
	Iterations     prometheus.Counter
	Nodes          prometheus.Counter
	Eliminated     prometheus.Counter
	Changepoints   prometheus.Counter
	SimulatedTime  prometheus.Gauge
	InventoryRates *prometheus.GaugeVec // by inventory index
	ConverterRates *prometheus.GaugeVec // by converter index
}

// Solve outcome labels.
const (
	OutcomeOptimal    = "optimal"
	OutcomeTruncated  = "truncated"
	OutcomeUnsolvable = "unsolvable"
	OutcomeError      = "error"
)

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resource_sim_solves_total",
				Help: "Steady-state solves by outcome",
			},
			[]string{"outcome"},
		),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resource_sim_simplex_iterations_total",
			Help: "Simplex pivots over all solves",
		}),
		Nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resource_sim_bnb_nodes_total",
			Help: "LP relaxations solved over all solves",
		}),
		Eliminated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resource_sim_presolve_eliminated_total",
			Help: "Variables removed by presolve over all solves",
		}),
		Changepoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resource_sim_changepoints_total",
			Help: "Background simulation changepoints processed",
		}),
		SimulatedTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resource_sim_simulated_seconds",
			Help: "Background simulation clock",
		}),
		InventoryRates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "resource_sim_inventory_rate",
				Help: "Net inflow per second of the latest solve",
			},
			[]string{"inventory"},
		),
		ConverterRates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "resource_sim_converter_rate",
				Help: "Operating rate in [0, 1] of the latest solve",
			},
			[]string{"converter"},
		),
	}
	m.registry.MustRegister(
		m.Solves, m.Iterations, m.Nodes, m.Eliminated,
		m.Changepoints, m.SimulatedTime, m.InventoryRates, m.ConverterRates,
	)
	return m
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSolve records the outcome of one Solve call.
func (m *Metrics) ObserveSolve(res *SolveResult, err error) {
	if m == nil {
		return
	}
	switch {
	case errors.Is(err, lp.ErrUnsolvable):
		m.Solves.WithLabelValues(OutcomeUnsolvable).Inc()
		return
	case err != nil:
		m.Solves.WithLabelValues(OutcomeError).Inc()
		return
	case res.Stats.Truncated:
		m.Solves.WithLabelValues(OutcomeTruncated).Inc()
	default:
		m.Solves.WithLabelValues(OutcomeOptimal).Inc()
	}
	m.Iterations.Add(float64(res.Stats.Iterations))
	m.Nodes.Add(float64(res.Stats.Nodes))
	m.Eliminated.Add(float64(res.Stats.Eliminated))
	for i, r := range res.InventoryRates {
		m.InventoryRates.WithLabelValues(strconv.Itoa(i)).Set(r)
	}
	for c, r := range res.ConverterRates {
		m.ConverterRates.WithLabelValues(strconv.Itoa(c)).Set(r)
	}
}

func (m *Metrics) observeChangepoint(clock float64) {
	if m == nil {
		return
	}
	m.Changepoints.Inc()
	m.SimulatedTime.Set(clock)
}

// Print writes every metric in the prometheus text exposition format.
func (m *Metrics) Print(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
