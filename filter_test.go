package ptmod

import (
	"math"
	"testing"
)

func TestFilterCutoffs(t *testing.T) {
	tests := []struct {
		name      string
		have      float64
		want      float64
		tolerance float64
	}{
		{"A500 low-pass", rcCutoff(a500LowPassR, a500LowPassC), 4420.97, 0.5},
		{"A1200 low-pass", rcCutoff(a1200LowPassR, a1200LowPassC), 34419.3, 1},
		{"high-pass", rcCutoff(highPassR, highPassC), 5.2, 0.01},
	}
	for _, test := range tests {
		if math.Abs(test.have-test.want) > test.tolerance {
			t.Errorf("%s: have %f, want %f", test.name, test.have, test.want)
		}
	}

	cutoff, q := ledFilterParams()
	if math.Abs(cutoff-3090) > 2 {
		t.Errorf("LED cutoff: have %f, want ~3090", cutoff)
	}
	if math.Abs(q-0.660) > 0.01 {
		t.Errorf("LED Q: have %f, want ~0.660", q)
	}
}

func TestFilterDC(t *testing.T) {
	var lp, hp onePoleFilter
	lp.init(44100, rcCutoff(a500LowPassR, a500LowPassC))
	hp.init(44100, rcCutoff(highPassR, highPassC))
	var led twoPoleFilter
	cutoff, q := ledFilterParams()
	led.init(44100, cutoff, q)

	var lpOut, hpOut, ledOut float64
	for i := 0; i < 44100; i++ {
		lpOut = lp.lowPass(0, 1000)
		hpOut = hp.highPass(0, 1000)
		ledOut = led.lowPass(0, 1000)
	}
	if math.Abs(lpOut-1000) > 0.01 {
		t.Errorf("low-pass should keep DC, got %f", lpOut)
	}
	if math.Abs(ledOut-1000) > 0.01 {
		t.Errorf("LED filter should keep DC, got %f", ledOut)
	}
	if math.Abs(hpOut) > 0.01 {
		t.Errorf("high-pass should remove DC, got %f", hpOut)
	}
}

func TestFilterAboveNyquist(t *testing.T) {
	var f onePoleFilter
	f.init(22050, rcCutoff(a1200LowPassR, a1200LowPassC))
	if math.IsNaN(f.a) || math.IsNaN(f.b) || f.b < 0 || f.b >= 1 {
		t.Fatalf("bad coefficients: a=%f b=%f", f.a, f.b)
	}
}

func TestMixerSeparation(t *testing.T) {
	config := Config{SampleRate: 44100}
	applyConfigDefaults(&config)

	var m mixer
	m.init(&config)
	m.setSeparation(0)
	for i := 0; i < 100; i++ {
		l, r := m.process(5000, 0)
		if l != r {
			t.Fatalf("mono mix: l=%f r=%f", l, r)
		}
	}

	m.init(&config)
	m.setSeparation(100)
	for i := 0; i < 100; i++ {
		_, r := m.process(5000, 0)
		if r != 0 {
			t.Fatalf("full separation leaked %f to the right channel", r)
		}
	}

	m.setSeparation(150)
	if m.separation != 100 {
		t.Errorf("separation should be clamped, got %d", m.separation)
	}
}

func TestToInt16(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1000.7, 1000},
		{40000, 32767},
		{-40000, -32768},
	}
	for _, test := range tests {
		if have := toInt16(test.in); have != test.want {
			t.Errorf("toInt16(%f): have %d, want %d", test.in, have, test.want)
		}
	}
}
