package synth

// ----- Voice ----- //

const (
	voiceIdle = iota
	voiceSounding
	voiceReleasing
)

// retrigger cuts the old note with a quick fade instead of a hard disconnect,
// natural completion gets a slightly longer one
const (
	retriggerFadeSec  = 0.001
	completionFadeSec = 0.005
)

// noteGraph is the transient graph built for one trigger: four operators,
// their wiring plan and the shared vibrato. It lives for the note's
// sounding+release span and is dropped as a whole.
type noteGraph struct {
	ops    [numOperators]*operator
	plan   [numOperators]opRoute
	lfo    *vibrato // nil when depth is zero
	t0     int64
	stopAt int64 // t0 + (duration + max release) in samples
	dropAt int64 // set once the teardown fade is scheduled
	fade   *param
}

func (g *noteGraph) render(t int64) float64 {
	lfoHz := 0.0
	if g.lfo != nil {
		lfoHz = g.lfo.step()
	}
	var modHz [numOperators]float64
	sum := 0.0
	for i, op := range g.ops {
		out := op.step(t, modHz[i], lfoHz)
		route := g.plan[i]
		if route.target >= 0 {
			modHz[route.target] += out * route.modIndex
		} else {
			sum += out
		}
	}
	return sum * g.fade.valueAt(t)
}

// scheduleFade arms the teardown: ramp the graph gain to zero over the given
// fade and mark the drop deadline. Safe to call on a graph that is already
// fading; the earlier deadline wins.
func (g *noteGraph) scheduleFade(t int64, fadeSec float64) {
	if g.dropAt != 0 && g.dropAt <= t+secondsToSamples(fadeSec) {
		return
	}
	g.fade.cancelAfter(t)
	g.fade.setValueAt(t, g.fade.valueAt(t))
	g.fade.linearRampTo(t+secondsToSamples(fadeSec), 0)
	g.dropAt = t + secondsToSamples(fadeSec)
}

// Voice is the long-lived, strictly monophonic synthesis object of one track.
// It owns at most one live note graph; a new trigger always supersedes the
// previous note.
type Voice struct {
	clock    *clock
	state    int
	graph    *noteGraph
	draining *noteGraph // previous graph during its teardown fade
	out      *outputChain
}

func NewVoice(c *clock) *Voice {
	return &Voice{clock: c, out: newOutputChain()}
}

// ConnectAnalyzer taps a copy of the voice's post-shaping signal for level
// metering. Safe to call before any note; not re-called per note.
func (v *Voice) ConnectAnalyzer(meter *levelMeter) {
	v.out.connectAnalyzer(meter)
}

// ConnectSidechainGain splices an externally automated gain between this
// voice and its destination without interrupting playback.
func (v *Voice) ConnectSidechainGain(gain *param) {
	v.out.connectSidechainGain(gain)
}

// Trigger starts a new note. Any prior graph is forced out first (short fade,
// then drop), so exactly one graph is scheduled when the call returns; the
// note is fully armed synchronously. Velocity scales amplitude; zero is
// silence, a negative value means none was supplied and plays at full
// amplitude.
func (v *Voice) Trigger(
	freq float64,
	duration float64,
	ops [numOperators]*operatorParams,
	lfo *lfoParams,
	algorithm int,
	pitchEnv *pitchEnvParams,
	velocity float64,
) {
	t0 := v.clock.now()
	if v.graph != nil {
		v.graph.scheduleFade(t0, retriggerFadeSec)
		// a draining graph from an even earlier note is cut hard
		v.draining = v.graph
		v.graph = nil
	}
	if velocity < 0 {
		velocity = 1
	}
	velocity = clamp(velocity, 0, 1)
	duration = atLeastZero(duration)
	if freq <= 0 {
		freq = 1
	}

	var normalized [numOperators]*operatorParams
	for i, p := range ops {
		normalized[i] = p.normalized()
	}
	g := &noteGraph{
		plan: routingPlan(algorithm),
		t0:   t0,
		fade: newParam(1),
	}
	for i, p := range normalized {
		op := newOperator(i, p, freq, velocity)
		schedulePitchEnvelope(op.freq, t0, freq*p.ratio, pitchEnv)
		scheduleAmpEnvelope(op.env, t0, p, duration)
		g.ops[i] = op
	}
	if lfo != nil {
		if n := lfo.normalized(); n.depth > 0 {
			g.lfo = newVibrato(n, freq)
		}
	}
	g.stopAt = t0 + secondsToSamples(duration+maxRelease(normalized))
	v.graph = g
	v.state = voiceSounding
}

// NoteOff releases the note early: every operator ramps from its current
// envelope value to zero over its own release time. A second call while
// already releasing is a no-op.
func (v *Voice) NoteOff() {
	if v.state != voiceSounding || v.graph == nil {
		return
	}
	t := v.clock.now()
	longest := 0.0
	for _, op := range v.graph.ops {
		releaseEnvelope(op.env, t, op.release)
		if op.release > longest {
			longest = op.release
		}
	}
	v.graph.stopAt = t + secondsToSamples(longest)
	v.state = voiceReleasing
}

// step renders one sample through the voice's fixed output chain. Teardown
// deadlines are checked here on the render clock, so a retrigger never races
// a pending cleanup: replacing the graph simply makes the old deadline moot.
func (v *Voice) step() float64 {
	t := v.clock.now()
	value := 0.0
	if g := v.draining; g != nil {
		if t >= g.dropAt {
			v.draining = nil
		} else {
			value += g.render(t)
		}
	}
	if g := v.graph; g != nil {
		if t >= g.stopAt {
			g.scheduleFade(t, completionFadeSec)
			v.graph = nil
			v.draining = g
			v.state = voiceIdle
			value += g.render(t)
		} else {
			value += g.render(t)
		}
	}
	return v.out.process(value, t)
}

// Active reports whether the voice still has a live or draining graph.
func (v *Voice) Active() bool {
	return v.graph != nil || v.draining != nil
}
