// sim/simulator.go
package sim

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/resource-sim/resource-sim/sim/trace"
)

// ErrChangepointLimit is returned by Run when the vehicle keeps hitting
// boundaries past BackgroundConfig.MaxChangepoints.
var ErrChangepointLimit = errors.New("sim: changepoint limit reached")

func errChangepointLimit(n int, clock float64) error {
	return fmt.Errorf("%w: %d changepoints by t=%g", ErrChangepointLimit, n, clock)
}

// EventQueue implements heap.Interface and orders events by timestamp.
// At equal timestamps the horizon runs last so a final changepoint is
// still processed.
type EventQueue []Event

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	ti, tj := eq[i].Timestamp(), eq[j].Timestamp()
	if ti != tj {
		return ti < tj
	}
	_, hi := eq[i].(*HorizonEvent)
	_, hj := eq[j].(*HorizonEvent)
	return !hi && hj
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// BackgroundSimulator advances a vehicle through time with piecewise
// constant rates. Between changepoints every inventory moves linearly.
type BackgroundSimulator struct {
	Clock   float64
	Horizon float64
	// EventQueue holds pending changepoints and the horizon.
	EventQueue EventQueue

	// Inventories and Converters are private copies; amounts evolve.
	Inventories []Inventory
	Converters  []Converter

	// Rates of the latest solve, indexed like Inventories and Converters.
	InventoryRates []float64
	ConverterRates []float64

	Changepoints int
	// Unsolvable is set once a solve finds no feasible flow; the vehicle
	// stays idle for the rest of the run.
	Unsolvable bool

	Trace   *trace.SimulationTrace
	Metrics *Metrics // may be nil

	cfg     BackgroundConfig
	stopped bool
	err     error
}

// NewBackgroundSimulator copies the vehicle, connects converters with nil
// sets by resource, and schedules the first changepoint and the horizon.
func NewBackgroundSimulator(inventories []Inventory, converters []Converter, cfg BackgroundConfig, metrics *Metrics) (*BackgroundSimulator, error) {
	if cfg.Horizon < 0 || math.IsNaN(cfg.Horizon) {
		return nil, fmt.Errorf("sim: horizon must be >= 0, got %g", cfg.Horizon)
	}
	for i, inv := range inventories {
		if inv.MaxAmount < 0 || inv.Amount < 0 || inv.Amount > inv.MaxAmount {
			return nil, fmt.Errorf("sim: inventory %d: amount %g outside [0, %g]", i, inv.Amount, inv.MaxAmount)
		}
	}

	level := trace.TraceLevelNone
	if cfg.TraceSolves {
		level = trace.TraceLevelSolves
	}
	s := &BackgroundSimulator{
		Horizon:        cfg.Horizon,
		EventQueue:     make(EventQueue, 0),
		Inventories:    slices.Clone(inventories),
		Converters:     slices.Clone(converters),
		InventoryRates: make([]float64, len(inventories)),
		ConverterRates: make([]float64, len(converters)),
		Trace:          trace.NewSimulationTrace(level),
		Metrics:        metrics,
		cfg:            cfg,
	}
	ConnectByResource(s.Inventories, s.Converters)

	s.Schedule(&ChangepointEvent{time: 0})
	s.Schedule(&HorizonEvent{time: cfg.Horizon})
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
func (s *BackgroundSimulator) Schedule(ev Event) {
	heap.Push(&s.EventQueue, ev)
}

// Run processes events until the horizon. The error is non-nil when a
// solve fails for a reason other than infeasibility, or when the
// changepoint limit is exceeded; the state then reflects the failure time.
func (s *BackgroundSimulator) Run() error {
	for len(s.EventQueue) > 0 && !s.stopped {
		ev := heap.Pop(&s.EventQueue).(Event)
		s.advance(ev.Timestamp())
		logrus.Debugf("[t=%.3f] Executing %T", s.Clock, ev)
		ev.Execute(s)
	}
	logrus.Infof("[t=%.3f] Background simulation ended after %d changepoints", s.Clock, s.Changepoints)
	return s.err
}

func (s *BackgroundSimulator) fail(err error) {
	s.err = err
	s.stopped = true
	logrus.Errorf("[t=%.3f] background simulation stopped: %v", s.Clock, err)
}

// advance moves every inventory along its rate up to time t. Amounts within
// tolerance of a bound snap to it, and newly reached bounds are traced.
func (s *BackgroundSimulator) advance(t float64) {
	dt := t - s.Clock
	if dt <= 0 {
		return
	}
	for i := range s.Inventories {
		rate := s.InventoryRates[i]
		if rate == 0 {
			continue
		}
		inv := &s.Inventories[i]
		before := inv.State()
		inv.Amount += rate * dt
		tol := boundaryTolerance * max(1, inv.MaxAmount)
		switch {
		case inv.Amount <= tol:
			inv.Amount = 0
		case inv.Amount >= inv.MaxAmount-tol:
			inv.Amount = inv.MaxAmount
		}
		after := inv.State()
		if !s.Trace.Enabled() {
			continue
		}
		if after.Has(Full) && !before.Has(Full) {
			s.Trace.RecordBoundary(trace.BoundaryRecord{Clock: t, Inventory: i, Full: true})
		}
		if after.Has(Empty) && !before.Has(Empty) {
			s.Trace.RecordBoundary(trace.BoundaryRecord{Clock: t, Inventory: i, Full: false})
		}
	}
	s.Clock = t
}

// nextBoundary returns the earliest time an inventory moving at its
// current rate reaches empty or full. Inventories already at the bound
// they move toward are skipped.
func (s *BackgroundSimulator) nextBoundary() (float64, bool) {
	best := math.Inf(1)
	for i, inv := range s.Inventories {
		rate := s.InventoryRates[i]
		var dt float64
		switch st := inv.State(); {
		case rate > 0 && !st.Has(Full):
			dt = (inv.MaxAmount - inv.Amount) / rate
		case rate < 0 && !st.Has(Empty):
			dt = inv.Amount / -rate
		default:
			continue
		}
		best = math.Min(best, dt)
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return s.Clock + best, true
}
