package synth

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// ----- Track State Codec ----- //

// Versioned fixed-width binary snapshot of the whole pattern: one record per
// track, concatenated for the fixed 4 tracks and base64url-encoded behind a
// one-character version prefix. Quantization is lossy by design (4-bit
// velocity/pitch maps, 10ms time resolution); the voice engine takes decoded
// values as-is.

const codecVersion = '1'

const trackRecordSize = 8 + // step bitmap
	32 + // 4-bit velocity map
	32 + // 4-bit pitch map
	2 + // base frequency, Hz
	1 + // note length
	2 + // flag bytes
	2 + // lfo freq, depth
	3 + // pitch envelope
	1 + // algorithm | duck amount
	1 + // duck release
	numOperators*7

const stateSize = numTracks * trackRecordSize

const (
	flagNoise = 1 << 0
	flagMuted = 1 << 1
)

// time fields are stored in centiseconds
const timeQuantum = 0.01

// ratio is stored in 1/16 steps
const ratioQuantum = 1.0 / 16

const maxLfoDepth = 4.0
const maxPitchEnvDepth = 8.0

func quantizeByte(v float64, max float64) byte {
	return byte(clamp(v/max, 0, 1)*255 + 0.5)
}
func dequantizeByte(b byte, max float64) float64 {
	return float64(b) / 255 * max
}
func quantizeTime(sec float64) byte {
	return byte(clamp(sec/timeQuantum, 0, 255) + 0.5)
}
func dequantizeTime(b byte) float64 {
	return float64(b) * timeQuantum
}
func quantizeNibble(v float64) byte {
	return byte(clamp(v, 0, 1)*15 + 0.5)
}

func encodeTrack(buf []byte, t *trackParams) {
	binary.BigEndian.PutUint64(buf[0:], t.steps)
	for i := 0; i < numSteps; i += 2 {
		buf[8+i/2] = quantizeNibble(t.stepVel[i])<<4 | quantizeNibble(t.stepVel[i+1])
	}
	for i := 0; i < numSteps; i += 2 {
		hi := byte(clamp(float64(t.stepPitch[i]+8), 0, 15))
		lo := byte(clamp(float64(t.stepPitch[i+1]+8), 0, 15))
		buf[40+i/2] = hi<<4 | lo
	}
	binary.BigEndian.PutUint16(buf[72:], uint16(clamp(t.frequency, 0, 65535)))
	buf[74] = quantizeTime(t.noteLength)
	flags := byte(0)
	if t.operators[0].noise {
		flags |= flagNoise
	}
	if t.muted {
		flags |= flagMuted
	}
	buf[75] = flags
	buf[76] = 0 // reserved
	buf[77] = byte(clamp(t.lfo.freq*10, 0, 255) + 0.5)
	buf[78] = quantizeByte(t.lfo.depth, maxLfoDepth)
	buf[79] = quantizeTime(t.pitchEnv.attack)
	buf[80] = quantizeTime(t.pitchEnv.decay)
	buf[81] = quantizeByte(t.pitchEnv.depth, maxPitchEnvDepth)
	algorithm := t.algorithm & 0x3
	duck := byte(clamp(t.duckAmount, 0, 1)*63 + 0.5)
	buf[82] = byte(algorithm)<<6 | duck
	buf[83] = quantizeTime(t.duckRelease)
	for i, op := range t.operators {
		o := buf[84+i*7:]
		o[0] = byte(clamp(op.ratio/ratioQuantum, 1, 255) + 0.5)
		o[1] = quantizeByte(op.level, 1)
		o[2] = quantizeTime(op.attack)
		o[3] = quantizeTime(op.decay)
		o[4] = quantizeByte(op.sustain, 1)
		o[5] = quantizeTime(op.release)
		o[6] = quantizeByte(op.feedback, 1)
	}
}

func decodeTrack(buf []byte, t *trackParams) {
	t.steps = binary.BigEndian.Uint64(buf[0:])
	for i := 0; i < numSteps; i += 2 {
		b := buf[8+i/2]
		t.stepVel[i] = float64(b>>4) / 15
		t.stepVel[i+1] = float64(b&0xf) / 15
	}
	for i := 0; i < numSteps; i += 2 {
		b := buf[40+i/2]
		t.stepPitch[i] = int(b>>4) - 8
		t.stepPitch[i+1] = int(b&0xf) - 8
	}
	t.frequency = float64(binary.BigEndian.Uint16(buf[72:]))
	t.noteLength = dequantizeTime(buf[74])
	t.operators[0].noise = buf[75]&flagNoise != 0
	t.muted = buf[75]&flagMuted != 0
	t.lfo.freq = float64(buf[77]) / 10
	t.lfo.depth = dequantizeByte(buf[78], maxLfoDepth)
	t.pitchEnv.attack = dequantizeTime(buf[79])
	t.pitchEnv.decay = dequantizeTime(buf[80])
	t.pitchEnv.depth = dequantizeByte(buf[81], maxPitchEnvDepth)
	t.algorithm = int(buf[82] >> 6)
	t.duckAmount = float64(buf[82]&0x3f) / 63
	t.duckRelease = dequantizeTime(buf[83])
	for i, op := range t.operators {
		o := buf[84+i*7:]
		op.ratio = float64(o[0]) * ratioQuantum
		op.level = dequantizeByte(o[1], 1)
		op.attack = dequantizeTime(o[2])
		op.decay = dequantizeTime(o[3])
		op.sustain = dequantizeByte(o[4], 1)
		op.release = dequantizeTime(o[5])
		op.feedback = dequantizeByte(o[6], 1)
	}
}

// encodeState packs all tracks into the URL-safe string form.
func encodeState(tracks [numTracks]*trackParams) string {
	buf := make([]byte, stateSize)
	for i, t := range tracks {
		encodeTrack(buf[i*trackRecordSize:(i+1)*trackRecordSize], t)
	}
	return string(codecVersion) + base64.RawURLEncoding.EncodeToString(buf)
}

// decodeState applies an encoded snapshot onto the given tracks.
func decodeState(s string, tracks [numTracks]*trackParams) error {
	if len(s) == 0 {
		return fmt.Errorf("empty state")
	}
	if s[0] != codecVersion {
		return fmt.Errorf("unsupported state version %q", s[0])
	}
	buf, err := base64.RawURLEncoding.DecodeString(s[1:])
	if err != nil {
		return err
	}
	if len(buf) != stateSize {
		return fmt.Errorf("bad state size %d, want %d", len(buf), stateSize)
	}
	for i, t := range tracks {
		decodeTrack(buf[i*trackRecordSize:(i+1)*trackRecordSize], t)
	}
	return nil
}
