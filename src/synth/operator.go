package synth

import (
	"math"
	"math/rand"
)

// ----- Noise Source ----- //

const noiseTableSize = 1 << 15

// pre-generated random samples, looped by every noise source
var noiseTable = func() []float64 {
	r := rand.New(rand.NewSource(0x9e3779b9))
	table := make([]float64, noiseTableSize)
	for i := range table {
		table[i] = r.Float64()*2 - 1
	}
	return table
}()

type noiseSource struct {
	pos int
}

func newNoiseSource() *noiseSource {
	return &noiseSource{pos: rand.Intn(noiseTableSize)}
}

func (n *noiseSource) step() float64 {
	v := noiseTable[n.pos]
	n.pos++
	if n.pos >= noiseTableSize {
		n.pos = 0
	}
	return v
}

// ----- Feedback Loop ----- //

// Self-modulation through a short delay line; the delay keeps the loop out of
// zero-delay territory.
const feedbackDelaySec = 0.001

type delayLine struct {
	cursor int
	past   []float64
}

func newDelayLine(sec float64) *delayLine {
	length := int(sampleRate * sec)
	if length < 1 {
		length = 1
	}
	return &delayLine{past: make([]float64, length)}
}

func (d *delayLine) delayed() float64 {
	return d.past[d.cursor]
}
func (d *delayLine) step(in float64) {
	d.past[d.cursor] = in
	d.cursor++
	if d.cursor >= len(d.past) {
		d.cursor = 0
	}
}

type feedbackLoop struct {
	delay *delayLine
	gain  float64
}

func newFeedbackLoop(gain float64) *feedbackLoop {
	return &feedbackLoop{delay: newDelayLine(feedbackDelaySec), gain: gain}
}

// process feeds the source into the loop and returns source plus the delayed,
// feedback-scaled copy.
func (f *feedbackLoop) process(src float64) float64 {
	fb := f.delay.delayed() * f.gain
	f.delay.step(src + fb)
	return src + fb
}

// ----- Operator ----- //

// operator is one FM operator: a sine or noise source, a scheduled frequency
// (pitch envelope target), a scheduled envelope gain and an output level.
// The output already includes the level stage, so the router can use it
// directly as the modulation magnitude.
type operator struct {
	noise    *noiseSource // nil unless the noise source is selected
	phase    float64
	freq     *param // Hz
	env      *param // 0-1, programmed by the envelope scheduler
	level    float64
	feedback *feedbackLoop
	release  float64 // sec, used by NoteOff
}

// newOperator builds the unit; params are assumed normalized. Only operator
// index 0 may use the noise source.
func newOperator(index int, p *operatorParams, baseFreq float64, velocity float64) *operator {
	o := &operator{
		freq:     newParam(baseFreq * p.ratio),
		env:      newParam(0),
		level:    p.level * velocity,
		feedback: newFeedbackLoop(p.feedback),
		release:  p.release,
	}
	if p.noise && index == 0 {
		o.noise = newNoiseSource()
	}
	return o
}

// step renders one sample. modHz is the accumulated frequency deviation from
// modulating operators, lfoHz the shared vibrato deviation.
func (o *operator) step(t int64, modHz float64, lfoHz float64) float64 {
	var v float64
	if o.noise != nil {
		v = o.noise.step()
	} else {
		freq := o.freq.valueAt(t) + modHz + lfoHz
		v = math.Sin(o.phase)
		o.phase += 2.0 * math.Pi * freq * secPerSample
	}
	v = o.feedback.process(v)
	return v * o.env.valueAt(t) * o.level
}

// ----- Vibrato LFO ----- //

// vibrato is the single shared low-frequency oscillator of a note. It drives
// every operator's frequency input through one gain scaled by
// depth * baseFrequency.
type vibrato struct {
	phase  float64
	freq   float64
	gainHz float64
}

func newVibrato(p *lfoParams, baseFreq float64) *vibrato {
	return &vibrato{freq: p.freq, gainHz: p.depth * baseFreq}
}

func (v *vibrato) step() float64 {
	out := math.Sin(v.phase)
	v.phase += 2.0 * math.Pi * v.freq * secPerSample
	return out * v.gainHz
}
