package trace

// TraceLevel controls the verbosity of solve tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSolves captures every solve and boundary crossing.
	TraceLevelSolves TraceLevel = "solves"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelSolves: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects records during a background simulation.
type SimulationTrace struct {
	Level      TraceLevel
	Solves     []SolveRecord
	Boundaries []BoundaryRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:      level,
		Solves:     make([]SolveRecord, 0),
		Boundaries: make([]BoundaryRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on nil.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelSolves
}

// RecordSolve appends a solve record.
func (st *SimulationTrace) RecordSolve(record SolveRecord) {
	st.Solves = append(st.Solves, record)
}

// RecordBoundary appends a boundary record.
func (st *SimulationTrace) RecordBoundary(record BoundaryRecord) {
	st.Boundaries = append(st.Boundaries, record)
}
