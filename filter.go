package ptmod

import (
	"math"
)

// Amiga output stage component values.
const (
	// A500: 1-pole RC low-pass (R321, C321).
	a500LowPassR = 360.0
	a500LowPassC = 1e-7

	// A1200: 1-pole RC low-pass (R321, C321).
	a1200LowPassR = 680.0
	a1200LowPassC = 6.8e-9

	// Both models: 1-pole RC high-pass (R324+R325, C334).
	highPassR = 1390.0
	highPassC = 2.2e-5

	// "LED" filter: 2-pole Sallen-Key low-pass.
	ledR1 = 10000.0
	ledR2 = 10000.0
	ledC1 = 6.8e-9
	ledC2 = 3.9e-9
)

func rcCutoff(r, c float64) float64 {
	return 1 / (2 * math.Pi * r * c)
}

// onePoleFilter is a stereo 1-pole low-pass filter.
// The high-pass output is derived from the same state.
type onePoleFilter struct {
	a, b float64
	tmp  [2]float64
}

func (f *onePoleFilter) init(sampleRate, cutoff float64) {
	// Cutoffs above Nyquist would make the coefficient meaningless.
	if nyquist := sampleRate / 2; cutoff >= nyquist {
		cutoff = nyquist - 1e-4
	}
	a := 2 - math.Cos(2*math.Pi*cutoff/sampleRate)
	b := a - math.Sqrt(a*a-1)
	f.a = 1 - b
	f.b = b
	f.tmp = [2]float64{}
}

func (f *onePoleFilter) lowPass(ch int, in float64) float64 {
	out := in*f.a + f.tmp[ch]*f.b
	f.tmp[ch] = out
	return out
}

func (f *onePoleFilter) highPass(ch int, in float64) float64 {
	return in - f.lowPass(ch, in)
}

// twoPoleFilter is a stereo biquad low-pass filter.
type twoPoleFilter struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

func (f *twoPoleFilter) init(sampleRate, cutoff, q float64) {
	w := 2 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w) / (2 * q)
	cosw := math.Cos(w)
	a0 := 1 + alpha

	f.b0 = (1 - cosw) / 2 / a0
	f.b1 = (1 - cosw) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
	f.reset()
}

func (f *twoPoleFilter) reset() {
	f.x1 = [2]float64{}
	f.x2 = [2]float64{}
	f.y1 = [2]float64{}
	f.y2 = [2]float64{}
}

func (f *twoPoleFilter) lowPass(ch int, in float64) float64 {
	out := f.b0*in + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
	f.x2[ch] = f.x1[ch]
	f.x1[ch] = in
	f.y2[ch] = f.y1[ch]
	f.y1[ch] = out
	return out
}

func ledFilterParams() (cutoff, q float64) {
	rc := math.Sqrt(ledR1 * ledR2 * ledC1 * ledC2)
	cutoff = 1 / (2 * math.Pi * rc)
	q = rc / (ledC2 * (ledR1 + ledR2))
	return cutoff, q
}
