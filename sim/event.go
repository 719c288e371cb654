package sim

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/lp"
	"github.com/resource-sim/resource-sim/sim/trace"
)

// Event defines the interface for all background simulation events.
// Each event has a Timestamp (simulated seconds) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*BackgroundSimulator)
}

// ChangepointEvent re-solves the vehicle. Rates stay constant until the
// next changepoint, which is the earliest moment some inventory reaches
// empty or full.
type ChangepointEvent struct {
	time float64
}

// Timestamp returns the scheduled time of the ChangepointEvent.
func (e *ChangepointEvent) Timestamp() float64 {
	return e.time
}

// Execute solves for new rates and schedules the following changepoint.
func (e *ChangepointEvent) Execute(s *BackgroundSimulator) {
	if s.Changepoints >= s.cfg.maxChangepoints() {
		s.fail(errChangepointLimit(s.Changepoints, s.Clock))
		return
	}
	s.Changepoints++
	s.Metrics.observeChangepoint(s.Clock)

	res, err := Solve(s.Inventories, s.Converters, s.cfg.Solver)
	s.Metrics.ObserveSolve(res, err)
	if s.Trace.Enabled() {
		s.Trace.RecordSolve(solveRecord(s.Clock, res, err))
	}

	switch {
	case errors.Is(err, lp.ErrUnsolvable):
		logrus.Warnf("[t=%.3f] vehicle has no feasible flow, holding every rate at zero: %v", s.Clock, err)
		s.Unsolvable = true
		clear(s.InventoryRates)
		clear(s.ConverterRates)
		return
	case err != nil:
		s.fail(err)
		return
	}
	if res.Stats.Truncated {
		logrus.Debugf("[t=%.3f] solve stopped at node limit after %d nodes", s.Clock, res.Stats.Nodes)
	}
	copy(s.InventoryRates, res.InventoryRates)
	copy(s.ConverterRates, res.ConverterRates)

	if next, ok := s.nextBoundary(); ok && next < s.Horizon {
		s.Schedule(&ChangepointEvent{time: next})
	}
}

// HorizonEvent ends the simulation.
type HorizonEvent struct {
	time float64
}

// Timestamp returns the scheduled time of the HorizonEvent.
func (e *HorizonEvent) Timestamp() float64 {
	return e.time
}

// Execute stops the event loop.
func (e *HorizonEvent) Execute(s *BackgroundSimulator) {
	logrus.Infof("<< Horizon at t=%.3f", e.time)
	if s.Metrics != nil {
		s.Metrics.SimulatedTime.Set(s.Clock)
	}
	s.stopped = true
}

func solveRecord(clock float64, res *SolveResult, err error) trace.SolveRecord {
	if err != nil {
		return trace.SolveRecord{
			Clock:      clock,
			Unsolvable: errors.Is(err, lp.ErrUnsolvable),
			Reason:     err.Error(),
		}
	}
	return trace.SolveRecord{
		Clock:       clock,
		Inventories: res.GraphInventories,
		Converters:  res.GraphConverters,
		Iterations:  res.Stats.Iterations,
		Nodes:       res.Stats.Nodes,
		Eliminated:  res.Stats.Eliminated,
		Truncated:   res.Stats.Truncated,
	}
}
