package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resource-sim/resource-sim/sim/lp"
)

func TestSolverOptions_LPOptionsFieldEquivalence(t *testing.T) {
	got := SolverOptions{Trace: true, DisablePresolve: true, MaxIterations: 7, MaxNodes: -1}.lpOptions()
	want := lp.Options{Trace: true, DisablePresolve: true, MaxIterations: 7, MaxNodes: -1}
	assert.Equal(t, want, got)
}

func TestBackgroundConfig_MaxChangepointsDefault(t *testing.T) {
	assert.Equal(t, DefaultMaxChangepoints, BackgroundConfig{}.maxChangepoints())
	assert.Equal(t, DefaultMaxChangepoints, BackgroundConfig{MaxChangepoints: -3}.maxChangepoints())
	assert.Equal(t, 5, BackgroundConfig{MaxChangepoints: 5}.maxChangepoints())
}
