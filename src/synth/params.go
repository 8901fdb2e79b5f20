package synth

import (
	"encoding/json"
	"log"
	"strconv"
)

// ----- Operator Params ----- //

type operatorParams struct {
	ratio    float64 // frequency multiplier, > 0
	level    float64 // 0-1
	attack   float64 // sec
	decay    float64 // sec
	sustain  float64 // 0-1
	release  float64 // sec
	feedback float64 // 0-1
	noise    bool    // operator 0 only
}
type operatorJSON struct {
	Ratio    float64 `json:"ratio"`
	Level    float64 `json:"level"`
	Attack   float64 `json:"attack"`
	Decay    float64 `json:"decay"`
	Sustain  float64 `json:"sustain"`
	Release  float64 `json:"release"`
	Feedback float64 `json:"feedback"`
	Noise    bool    `json:"noise"`
}

func newOperatorParams() *operatorParams {
	return &operatorParams{
		ratio:   1,
		level:   0,
		attack:  0.001,
		decay:   0.1,
		sustain: 0,
		release: 0.05,
	}
}

// normalized resolves configuration anomalies by clamping or falling back to
// documented defaults. Never fails.
func (o *operatorParams) normalized() *operatorParams {
	n := *o
	if n.ratio <= 0 {
		n.ratio = 1
	}
	n.level = clamp(n.level, 0, 1)
	n.attack = atLeastZero(n.attack)
	n.decay = atLeastZero(n.decay)
	n.sustain = clamp(n.sustain, 0, 1)
	n.release = atLeastZero(n.release)
	n.feedback = clamp(n.feedback, 0, 1)
	return &n
}

func (o *operatorParams) applyJSON(data json.RawMessage) {
	var j operatorJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to operatorParams")
		return
	}
	o.ratio = j.Ratio
	o.level = j.Level
	o.attack = j.Attack
	o.decay = j.Decay
	o.sustain = j.Sustain
	o.release = j.Release
	o.feedback = j.Feedback
	o.noise = j.Noise
}
func (o *operatorParams) toJSON() json.RawMessage {
	return toRawMessage(&operatorJSON{
		Ratio:    o.ratio,
		Level:    o.level,
		Attack:   o.attack,
		Decay:    o.decay,
		Sustain:  o.sustain,
		Release:  o.release,
		Feedback: o.feedback,
		Noise:    o.noise,
	})
}
func (o *operatorParams) set(key string, value string) error {
	switch key {
	case "noise":
		o.noise = value == "true"
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "ratio":
		o.ratio = v
	case "level":
		o.level = v
	case "attack":
		o.attack = v
	case "decay":
		o.decay = v
	case "sustain":
		o.sustain = v
	case "release":
		o.release = v
	case "feedback":
		o.feedback = v
	}
	return nil
}

// ----- LFO Params ----- //

type lfoParams struct {
	freq  float64 // Hz
	depth float64 // 0-4, scales vibrato proportional to the base frequency
}
type lfoJSON struct {
	Freq  float64 `json:"freq"`
	Depth float64 `json:"depth"`
}

func newLfoParams() *lfoParams {
	return &lfoParams{freq: 0, depth: 0}
}

func (l *lfoParams) normalized() *lfoParams {
	n := *l
	n.freq = atLeastZero(n.freq)
	n.depth = clamp(n.depth, 0, 4)
	return &n
}

func (l *lfoParams) applyJSON(data json.RawMessage) {
	var j lfoJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to lfoParams")
		return
	}
	l.freq = j.Freq
	l.depth = j.Depth
}
func (l *lfoParams) toJSON() json.RawMessage {
	return toRawMessage(&lfoJSON{Freq: l.freq, Depth: l.depth})
}
func (l *lfoParams) set(key string, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "freq":
		l.freq = v
	case "depth":
		l.depth = v
	}
	return nil
}

// ----- Pitch Envelope Params ----- //

type pitchEnvParams struct {
	attack float64 // sec
	decay  float64 // sec
	depth  float64 // multiplier of the base frequency added at note onset
}
type pitchEnvJSON struct {
	Attack float64 `json:"attack"`
	Decay  float64 `json:"decay"`
	Depth  float64 `json:"depth"`
}

func newPitchEnvParams() *pitchEnvParams {
	return &pitchEnvParams{}
}

func (p *pitchEnvParams) applyJSON(data json.RawMessage) {
	var j pitchEnvJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to pitchEnvParams")
		return
	}
	p.attack = j.Attack
	p.decay = j.Decay
	p.depth = j.Depth
}
func (p *pitchEnvParams) toJSON() json.RawMessage {
	return toRawMessage(&pitchEnvJSON{Attack: p.attack, Decay: p.decay, Depth: p.depth})
}
func (p *pitchEnvParams) set(key string, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "attack":
		p.attack = v
	case "decay":
		p.decay = v
	case "depth":
		p.depth = v
	}
	return nil
}

// ----- Track Params ----- //

const numSteps = 64

type trackParams struct {
	frequency   float64 // base Hz
	noteLength  float64 // sec
	muted       bool
	algorithm   int
	duckAmount  float64 // 0-1
	duckRelease float64 // sec
	operators   [numOperators]*operatorParams
	lfo         *lfoParams
	pitchEnv    *pitchEnvParams
	steps       uint64 // bitmap, bit i = step i active
	stepVel     [numSteps]float64
	stepPitch   [numSteps]int // semitone offset
}
type trackJSON struct {
	Frequency   float64           `json:"frequency"`
	NoteLength  float64           `json:"noteLength"`
	Muted       bool              `json:"muted"`
	Algorithm   string            `json:"algorithm"`
	DuckAmount  float64           `json:"duckAmount"`
	DuckRelease float64           `json:"duckRelease"`
	Operators   []json.RawMessage `json:"operators"`
	Lfo         json.RawMessage   `json:"lfo"`
	PitchEnv    json.RawMessage   `json:"pitchEnv"`
	Steps       []int             `json:"steps"`
	StepVel     []float64         `json:"stepVel"`
	StepPitch   []int             `json:"stepPitch"`
}

func newTrackParams() *trackParams {
	t := &trackParams{
		frequency:   100,
		noteLength:  0.3,
		algorithm:   algorithmSerial,
		duckRelease: 0.2,
		lfo:         newLfoParams(),
		pitchEnv:    newPitchEnvParams(),
	}
	for i := range t.operators {
		t.operators[i] = newOperatorParams()
	}
	for i := range t.stepVel {
		t.stepVel[i] = 1
	}
	return t
}

func (t *trackParams) stepActive(i int) bool {
	return t.steps&(1<<uint(i%numSteps)) != 0
}
func (t *trackParams) setStep(i int, active bool) {
	if active {
		t.steps |= 1 << uint(i%numSteps)
	} else {
		t.steps &^= 1 << uint(i%numSteps)
	}
}

func (t *trackParams) applyJSON(data json.RawMessage) {
	var j trackJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to trackParams")
		return
	}
	t.frequency = j.Frequency
	t.noteLength = j.NoteLength
	t.muted = j.Muted
	t.algorithm = algorithmFromString(j.Algorithm)
	t.duckAmount = j.DuckAmount
	t.duckRelease = j.DuckRelease
	if len(j.Operators) == len(t.operators) {
		for i, data := range j.Operators {
			t.operators[i].applyJSON(data)
		}
	} else {
		log.Println("failed to apply JSON to operator params")
	}
	t.lfo.applyJSON(j.Lfo)
	t.pitchEnv.applyJSON(j.PitchEnv)
	t.steps = 0
	for _, i := range j.Steps {
		t.setStep(i, true)
	}
	for i := 0; i < numSteps && i < len(j.StepVel); i++ {
		t.stepVel[i] = clamp(j.StepVel[i], 0, 1)
	}
	for i := 0; i < numSteps && i < len(j.StepPitch); i++ {
		t.stepPitch[i] = j.StepPitch[i]
	}
}
func (t *trackParams) toJSON() json.RawMessage {
	operators := make([]json.RawMessage, len(t.operators))
	for i, o := range t.operators {
		operators[i] = o.toJSON()
	}
	steps := make([]int, 0, numSteps)
	for i := 0; i < numSteps; i++ {
		if t.stepActive(i) {
			steps = append(steps, i)
		}
	}
	return toRawMessage(&trackJSON{
		Frequency:   t.frequency,
		NoteLength:  t.noteLength,
		Muted:       t.muted,
		Algorithm:   algorithmToString(t.algorithm),
		DuckAmount:  t.duckAmount,
		DuckRelease: t.duckRelease,
		Operators:   operators,
		Lfo:         t.lfo.toJSON(),
		PitchEnv:    t.pitchEnv.toJSON(),
		Steps:       steps,
		StepVel:     t.stepVel[:],
		StepPitch:   t.stepPitch[:],
	})
}
func (t *trackParams) set(key string, value string) error {
	switch key {
	case "muted":
		t.muted = value == "true"
		return nil
	case "algorithm":
		t.algorithm = algorithmFromString(value)
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	switch key {
	case "frequency":
		t.frequency = v
	case "note_length":
		t.noteLength = v
	case "duck_amount":
		t.duckAmount = v
	case "duck_release":
		t.duckRelease = v
	}
	return nil
}
