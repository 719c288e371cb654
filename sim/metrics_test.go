package sim

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim/lp"
)

func TestMetrics_ObserveSolve(t *testing.T) {
	m := NewMetrics()
	res := &SolveResult{
		InventoryRates: []float64{-1, 2},
		ConverterRates: []float64{1},
		Stats:          lp.Stats{Iterations: 4, Nodes: 1, Eliminated: 3},
	}

	m.ObserveSolve(res, nil)
	m.ObserveSolve(&SolveResult{Stats: lp.Stats{Iterations: 2, Nodes: 5, Truncated: true}}, nil)
	m.ObserveSolve(nil, fmt.Errorf("wrapped: %w", lp.ErrInfeasible))
	m.ObserveSolve(nil, errors.New("boom"))

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Solves.WithLabelValues(OutcomeOptimal)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Solves.WithLabelValues(OutcomeTruncated)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Solves.WithLabelValues(OutcomeUnsolvable)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Solves.WithLabelValues(OutcomeError)))
	assert.Equal(t, 6.0, promtest.ToFloat64(m.Iterations))
	assert.Equal(t, 6.0, promtest.ToFloat64(m.Nodes))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.Eliminated))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.InventoryRates.WithLabelValues("1")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ConverterRates.WithLabelValues("0")))
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSolve(nil, errors.New("ignored"))
		m.observeChangepoint(3)
	})
}

func TestMetrics_Print(t *testing.T) {
	m := NewMetrics()
	m.observeChangepoint(42)
	m.ObserveSolve(&SolveResult{ConverterRates: []float64{0.5}}, nil)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "resource_sim_changepoints_total 1")
	assert.Contains(t, out, "resource_sim_simulated_seconds 42")
	assert.Contains(t, out, `resource_sim_converter_rate{converter="0"} 0.5`)
	assert.Contains(t, out, `resource_sim_solves_total{outcome="optimal"} 1`)
}
