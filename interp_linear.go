//go:build ptlinear

package ptmod

const interpolationName = "linear"

// fetch returns the sample value under the cursor,
// interpolated towards the next frame Paula would fetch.
func (p *paulaVoice) fetch(samples *[numSampleSlots]sampleSlot) float64 {
	data := samples[p.cur.slot].data
	i := int(p.pos >> 32)
	if i >= len(data) {
		return 0
	}
	a := float64(data[i])

	var b float64
	switch j := i + 1; {
	case j < p.cur.end && j < len(data):
		b = float64(data[j])
	case !p.next.isEmpty():
		if next := samples[p.next.slot].data; p.next.start < len(next) {
			b = float64(next[p.next.start])
		}
	}

	t := float64(p.pos&0xFFFFFFFF) * (1.0 / (1 << 32))
	return a + (b-a)*t
}
