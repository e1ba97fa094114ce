//go:build !ptlinear

package ptmod

const interpolationName = "nearest"

// fetch returns the sample value under the cursor.
func (p *paulaVoice) fetch(samples *[numSampleSlots]sampleSlot) float64 {
	data := samples[p.cur.slot].data
	i := int(p.pos >> 32)
	if i >= len(data) {
		return 0
	}
	return float64(data[i])
}
