package synth

import (
	"math"
	"testing"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	t.Helper()
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func expectError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected an error, but got none")
	}
}

// renderSamples steps the voice for n samples, advancing the shared clock.
func renderSamples(c *clock, v *Voice, n int64) []float64 {
	out := make([]float64, n)
	for i := int64(0); i < n; i++ {
		out[i] = v.step()
		c.tick()
	}
	return out
}
