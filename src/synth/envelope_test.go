package synth

import "testing"

func testOperatorParams() *operatorParams {
	return &operatorParams{
		ratio:   1,
		level:   0.8,
		attack:  0.01,
		decay:   0.1,
		sustain: 0.3,
		release: 0.2,
	}
}

func TestAmpEnvelopeShape(t *testing.T) {
	p := testOperatorParams()
	env := newParam(0)
	scheduleAmpEnvelope(env, 0, p, 0.5)

	expectNearlyEqual(t, env.valueAt(0), 0)
	// attack midpoint and peak
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.005)), 0.5)
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.01)), 1)
	// decay reaches sustain
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.11)), 0.3)
	// sustain holds through the nominal note end
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.3)), 0.3)
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.5)), 0.3)
	// release ends at duration+release
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.6)), 0.15)
	expectNearlyEqual(t, env.valueAt(secondsToSamples(0.7)), 0)
	expectNearlyEqual(t, env.valueAt(secondsToSamples(1.0)), 0)
}

// the gain at note end is exactly sustain, never a ramp midpoint
func TestSustainHoldInvariant(t *testing.T) {
	durations := []float64{0.2, 0.5, 1.0}
	for _, duration := range durations {
		p := testOperatorParams()
		env := newParam(0)
		scheduleAmpEnvelope(env, 0, p, duration)
		expectNearlyEqual(t, env.valueAt(secondsToSamples(duration)), p.sustain)
	}
}

func TestNegativeTimesClampToInstantaneous(t *testing.T) {
	p := testOperatorParams()
	p.attack = -1
	p.decay = -1
	env := newParam(0)
	scheduleAmpEnvelope(env, 0, p, 0.5)
	// instantaneous attack and decay land on sustain right away
	expectNearlyEqual(t, env.valueAt(1), 0.3)
}

func TestPitchEnvelopeShape(t *testing.T) {
	freq := newParam(0)
	pe := &pitchEnvParams{attack: 0.01, decay: 0.08, depth: 2}
	schedulePitchEnvelope(freq, 0, 100, pe)
	expectNearlyEqual(t, freq.valueAt(0), 300)
	expectNearlyEqual(t, freq.valueAt(secondsToSamples(0.01)), 200)
	expectNearlyEqual(t, freq.valueAt(secondsToSamples(0.09)), 100)
	expectNearlyEqual(t, freq.valueAt(secondsToSamples(1)), 100)
}

func TestPitchEnvelopeDisabledHoldsBase(t *testing.T) {
	freq := newParam(0)
	schedulePitchEnvelope(freq, 0, 220, nil)
	expectNearlyEqual(t, freq.valueAt(0), 220)
	expectNearlyEqual(t, freq.valueAt(secondsToSamples(1)), 220)

	freq = newParam(0)
	schedulePitchEnvelope(freq, 0, 220, &pitchEnvParams{attack: 0.1, decay: 0.1, depth: 0})
	expectNearlyEqual(t, freq.valueAt(secondsToSamples(0.05)), 220)
}

// noteOff ramps from the current instantaneous value, not from sustain
func TestReleaseFromCurrentValue(t *testing.T) {
	p := testOperatorParams()
	env := newParam(0)
	scheduleAmpEnvelope(env, 0, p, 0.5)

	// release mid-decay, where the value is above sustain
	at := secondsToSamples(0.06)
	current := env.valueAt(at)
	if current <= p.sustain || current >= 1 {
		t.Fatalf("expected mid-decay value, got %v", current)
	}
	releaseEnvelope(env, at, p.release)
	expectNearlyEqual(t, env.valueAt(at), current)
	expectNearlyEqual(t, env.valueAt(at+secondsToSamples(p.release)/2), current/2)
	expectNearlyEqual(t, env.valueAt(at+secondsToSamples(p.release)), 0)
}

func TestMaxRelease(t *testing.T) {
	var ops [numOperators]*operatorParams
	for i := range ops {
		ops[i] = testOperatorParams()
	}
	ops[2].release = 0.7
	ops[3].release = -5 // clamped to 0
	expectNearlyEqual(t, maxRelease(ops), 0.7)
}
