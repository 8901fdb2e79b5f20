package synth

import "math"

// ----- Output Stage ----- //

// levelMeter is the analysis node an external bus can attach to a voice.
// It sees the voice's post-shaping signal.
type levelMeter struct {
	peak   float64
	square float64
	count  int
}

func (m *levelMeter) push(v float64) {
	if a := math.Abs(v); a > m.peak {
		m.peak = a
	}
	m.square += v * v
	m.count++
}

// Peak returns the peak level seen since the last call and resets it.
func (m *levelMeter) Peak() float64 {
	p := m.peak
	m.peak = 0
	return p
}

// RMS returns the root-mean-square level seen since the last call and resets.
func (m *levelMeter) RMS() float64 {
	if m.count == 0 {
		return 0
	}
	v := math.Sqrt(m.square / float64(m.count))
	m.square = 0
	m.count = 0
	return v
}

// outputChain is a voice's fixed post-processing: DC blocker and soft limiter,
// then the optional externally automated sidechain gain, then the optional
// analyzer tap. The chain is shared by every note of the voice; only the
// splice points ever change, and only at connect time.
type outputChain struct {
	dcPrevIn  float64
	dcPrevOut float64
	drive     float64
	sidechain *param
	analyzer  *levelMeter
}

func newOutputChain() *outputChain {
	return &outputChain{drive: 1}
}

func (c *outputChain) connectSidechainGain(gain *param) {
	c.sidechain = gain
}
func (c *outputChain) connectAnalyzer(meter *levelMeter) {
	c.analyzer = meter
}

func (c *outputChain) dcBlock(x float64) float64 {
	const r = 0.995
	y := x - c.dcPrevIn + r*c.dcPrevOut
	c.dcPrevIn = x
	c.dcPrevOut = y
	return y
}

func (c *outputChain) process(x float64, t int64) float64 {
	y := c.dcBlock(x)
	y = math.Tanh(y * c.drive)
	if c.sidechain != nil {
		y *= clamp(c.sidechain.valueAt(t), 0, 1)
	}
	if c.analyzer != nil {
		c.analyzer.push(y)
	}
	return y
}
