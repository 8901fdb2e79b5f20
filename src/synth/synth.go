package synth

import "encoding/json"

const (
	sampleRate      = 48000
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
	fftSize         = 2048 // multiple of samplesPerCycle
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
const secPerSample = 1.0 / sampleRate

const numTracks = 4
const numOperators = 4

const masterGain = 0.3

// ----- Utility ----- //

func secondsToSamples(sec float64) int64 {
	return int64(sec * sampleRate)
}

func clamp(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func atLeastZero(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ----- Clock ----- //

// clock is the engine's sample counter. The render loop advances it once per
// rendered sample; everything scheduled against it uses absolute sample times.
type clock struct {
	pos int64
}

func (c *clock) now() int64 {
	return c.pos
}

func (c *clock) tick() {
	c.pos++
}
