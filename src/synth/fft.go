package synth

import (
	"math"
	"math/cmplx"
)

// ----- FFT ----- //

// Radix-2 in-place transform used by the analysis reporting path. Tables are
// precomputed for the fixed fftSize.
type fft struct {
	bitReverseTable []int
	wTable          []complex128
	scratch         []complex128
}

func newFFT(length int) *fft {
	bitReverseTable := make([]int, length)
	for i := range bitReverseTable {
		bitReverseTable[i] = bitReverse(i, length)
	}
	wTable := make([]complex128, length)
	w := -2.0 * math.Pi / float64(length)
	for i := range wTable {
		wTable[i] = cmplx.Exp(complex(0, w*float64(i)))
	}
	return &fft{
		bitReverseTable: bitReverseTable,
		wTable:          wTable,
		scratch:         make([]complex128, length),
	}
}

func bitReverse(k, n int) int {
	m := 0
	for ; n > 1; n = n >> 1 {
		m = m<<1 + k&1
		k = k >> 1
	}
	return m
}

func (f *fft) calc(x []complex128) {
	n := len(x)
	for i := 0; i < n; i++ {
		rev := f.bitReverseTable[i]
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}
	for m := 1; m < n; m = m << 1 {
		step := m << 1
		for k := 0; k < m; k++ {
			w := f.wTable[n/step*k]
			for i := k; i < n; i += step {
				j := i + m
				tmp := x[j] * w
				x[j] = x[i] - tmp
				x[i] = x[i] + tmp
			}
		}
	}
}

// calcAbs replaces x with the magnitude spectrum of x.
func (f *fft) calcAbs(x []float64) {
	cx := f.scratch[:len(x)]
	for i, v := range x {
		cx[i] = complex(v, 0)
	}
	f.calc(cx)
	for i := range x {
		x[i] = cmplx.Abs(cx[i])
	}
}

// hanWindow applies a Han window in place before analysis.
func hanWindow(x []float64) {
	n := len(x)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(i)/float64(n))
		x[i] = x[i] * w
	}
}
