// Package testutil provides assertion helpers shared by the sim test
// packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNear compares two float64 values with an absolute tolerance,
// for quantities that are expected to be zero.
func AssertNear(t *testing.T, name string, want, got, absTol float64) {
	t.Helper()
	if math.Abs(want-got) > absTol {
		t.Errorf("%s: got %v, want %v (tolerance %v)", name, got, want, absTol)
	}
}

// AssertSum checks that values add up to want within relTol.
func AssertSum(t *testing.T, name string, want float64, values []float64, relTol float64) {
	t.Helper()
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	AssertFloat64Equal(t, name, want, sum, relTol)
}
