package synth

import "math"

// ----- Sequencer ----- //

const stepsPerBeat = 4 // 16th notes

// sequencer is the step transport: a 16th-note clock on the sample counter
// that fires track triggers synchronously when a step comes due. No
// shuffle; steps are evenly spaced.
type sequencer struct {
	clock      *clock
	playing    bool
	bpm        float64
	step       int
	nextStepAt int64
}

func newSequencer(c *clock) *sequencer {
	return &sequencer{clock: c, bpm: 120}
}

func (s *sequencer) samplesPerStep() int64 {
	return secondsToSamples(60 / s.bpm / stepsPerBeat)
}

func (s *sequencer) setBpm(bpm float64) {
	s.bpm = clamp(bpm, 30, 300)
}

func (s *sequencer) play() {
	if s.playing {
		return
	}
	s.playing = true
	s.step = 0
	s.nextStepAt = s.clock.now()
}

func (s *sequencer) stop() {
	s.playing = false
}

// advance fires at most one step per call; the render loop calls it once per
// sample, which is more than enough resolution.
func (s *sequencer) advance(tracks [numTracks]*trackParams, voices [numTracks]*Voice, duck *duckBus) {
	if !s.playing || s.clock.now() < s.nextStepAt {
		return
	}
	step := s.step
	s.step = (s.step + 1) % numSteps
	s.nextStepAt += s.samplesPerStep()
	for i, track := range tracks {
		if track.muted || !track.stepActive(step) {
			continue
		}
		// a step the user turned all the way down stays silent
		if track.stepVel[step] <= 0 {
			continue
		}
		freq := track.frequency * math.Pow(2, float64(track.stepPitch[step])/12)
		voices[i].Trigger(
			freq,
			track.noteLength,
			track.operators,
			track.lfo,
			track.algorithm,
			track.pitchEnv,
			track.stepVel[step],
		)
		duck.trigger(i, tracks)
	}
}
