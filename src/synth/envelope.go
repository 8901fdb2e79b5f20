package synth

// ----- Envelope Scheduler ----- //

// Computes the automation curves of a note and installs them on the operator
// params before Trigger returns. All times are absolute sample positions.

/*
  1 +      x
    |     / \
    |    /   \
  s +   /     x- - - - -x
    |  /                 \
    | /                   \
  0 +-+---+---+---------+---+--
    |t0   |a  |a+d      |dur|dur+r|

  The sustain plateau persists at least until the nominal note end, so one
  shape covers both short percussive hits and held tones.
*/
func scheduleAmpEnvelope(env *param, t0 int64, p *operatorParams, duration float64) {
	attack := atLeastZero(p.attack)
	decay := atLeastZero(p.decay)
	release := atLeastZero(p.release)
	env.setValueAt(t0, 0)
	env.linearRampTo(t0+secondsToSamples(attack), 1)
	env.linearRampTo(t0+secondsToSamples(attack+decay), p.sustain)
	env.setValueAt(t0+secondsToSamples(duration), p.sustain)
	env.linearRampTo(t0+secondsToSamples(duration+release), 0)
}

// schedulePitchEnvelope programs the decaying pitch drift: the operator starts
// at opFreq*(1+depth), falls to opFreq*(1+depth/2) over the attack and settles
// at opFreq by the end of the decay. Without a pitch envelope the frequency
// just holds.
func schedulePitchEnvelope(freq *param, t0 int64, opFreq float64, p *pitchEnvParams) {
	if p == nil || p.depth <= 0 {
		freq.setValueAt(t0, opFreq)
		return
	}
	attack := atLeastZero(p.attack)
	decay := atLeastZero(p.decay)
	freq.setValueAt(t0, opFreq+opFreq*p.depth)
	freq.linearRampTo(t0+secondsToSamples(attack), opFreq+opFreq*p.depth*0.5)
	freq.linearRampTo(t0+secondsToSamples(attack+decay), opFreq)
}

// releaseEnvelope replaces whatever tail was scheduled with a ramp from the
// envelope's current instantaneous value down to zero over the operator's own
// release time.
func releaseEnvelope(env *param, t int64, release float64) {
	v := env.valueAt(t)
	env.cancelAfter(t)
	env.setValueAt(t, v)
	env.linearRampTo(t+secondsToSamples(atLeastZero(release)), 0)
}

func maxRelease(ops [numOperators]*operatorParams) float64 {
	max := 0.0
	for _, p := range ops {
		if r := atLeastZero(p.release); r > max {
			max = r
		}
	}
	return max
}
