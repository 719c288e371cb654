package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSolves      int
	UnsolvableSolves int
	TruncatedSolves  int
	MeanIterations   float64
	MaxIterations    int
	MaxNodes         int
	FilledCount      int
	EmptiedCount     int
	BoundaryCounts   map[int]int // inventory index → boundary crossings
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		BoundaryCounts: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSolves = len(st.Solves)
	totalIterations := 0
	for _, s := range st.Solves {
		if s.Unsolvable {
			summary.UnsolvableSolves++
		}
		if s.Truncated {
			summary.TruncatedSolves++
		}
		totalIterations += s.Iterations
		summary.MaxIterations = max(summary.MaxIterations, s.Iterations)
		summary.MaxNodes = max(summary.MaxNodes, s.Nodes)
	}
	if len(st.Solves) > 0 {
		summary.MeanIterations = float64(totalIterations) / float64(len(st.Solves))
	}

	for _, b := range st.Boundaries {
		summary.BoundaryCounts[b.Inventory]++
		if b.Full {
			summary.FilledCount++
		} else {
			summary.EmptiedCount++
		}
	}

	return summary
}
