package ptmod

// mixer turns the two raw Amiga output channels into the final stereo signal.
//
// Paula channels are hard-panned: 0 and 3 are on the left, 1 and 2 are on the right.
// The raw mix is filtered like the Amiga output stage does it,
// then the stereo image is narrowed according to the separation setting.
type mixer struct {
	model FilterModel
	led   bool

	separation int
	sideScale  float64

	// gain maps the raw [-16384, 16256] range of two channels to int16.
	gain float64

	a500      onePoleFilter
	a1200     onePoleFilter
	highPass  onePoleFilter
	ledFilter twoPoleFilter
}

func (m *mixer) init(config *Config) {
	sampleRate := float64(config.SampleRate)
	m.a500.init(sampleRate, rcCutoff(a500LowPassR, a500LowPassC))
	m.a1200.init(sampleRate, rcCutoff(a1200LowPassR, a1200LowPassC))
	m.highPass.init(sampleRate, rcCutoff(highPassR, highPassC))
	cutoff, q := ledFilterParams()
	m.ledFilter.init(sampleRate, cutoff, q)

	m.model = config.FilterModel
	m.led = config.LEDFilter
	m.gain = 2 * config.Amplification
	m.setSeparation(config.StereoSeparation)
}

func (m *mixer) setSeparation(percent int) {
	m.separation = clamp(percent, 0, 100)
	m.sideScale = float64(m.separation) / 100
}

func (m *mixer) setLED(on bool) {
	if on && !m.led {
		m.ledFilter.reset()
	}
	m.led = on
}

func (m *mixer) process(l, r float64) (float64, float64) {
	if m.model == FilterA500 {
		l = m.a500.lowPass(0, l)
		r = m.a500.lowPass(1, r)
	} else {
		l = m.a1200.lowPass(0, l)
		r = m.a1200.lowPass(1, r)
	}
	if m.led {
		l = m.ledFilter.lowPass(0, l)
		r = m.ledFilter.lowPass(1, r)
	}
	l = m.highPass.highPass(0, l)
	r = m.highPass.highPass(1, r)

	mid := (l + r) * 0.5
	side := (l - r) * 0.5 * m.sideScale
	return (mid + side) * m.gain, (mid - side) * m.gain
}

func toInt16(v float64) int16 {
	if v >= 32767 {
		return 32767
	}
	if v <= -32768 {
		return -32768
	}
	return int16(v)
}
