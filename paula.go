package ptmod

// dmaBlock is a sample memory range Paula is fetching from.
// An empty block (end <= start) means "nothing to play".
type dmaBlock struct {
	slot  uint8
	start int
	end   int
}

func (b dmaBlock) isEmpty() bool { return b.end <= b.start }

func (b dmaBlock) len() int { return b.end - b.start }

// paulaVoice emulates one Paula audio DMA channel.
//
// The hardware plays the current block and then reloads the
// location/length registers that were written last: this is
// how the sample loops work, and why a sample change without a note
// only takes effect after the current block ends.
type paulaVoice struct {
	cur  dmaBlock
	next dmaBlock

	// pos is a 32.32 fixed-point index into the slot data.
	pos   uint64
	delta uint64

	volume int
	active bool
}

func loopBlock(samples *[numSampleSlots]sampleSlot, slot uint8) dmaBlock {
	s := &samples[slot]
	if !s.isLooped() {
		return dmaBlock{slot: slot}
	}
	return dmaBlock{slot: slot, start: s.loopStart, end: s.loopEnd()}
}

// trigger restarts the DMA from the given byte offset.
func (p *paulaVoice) trigger(samples *[numSampleSlots]sampleSlot, slot uint8, offset int) {
	s := &samples[slot]
	p.cur = dmaBlock{slot: slot, start: offset, end: s.playEnd()}
	p.next = loopBlock(samples, slot)
	if p.cur.start > p.cur.end {
		p.cur.start = p.cur.end
	}
	p.pos = uint64(p.cur.start) << 32
	p.active = true
	if p.cur.isEmpty() {
		p.reload(0)
	}
}

// latch writes the loop registers without restarting the DMA.
func (p *paulaVoice) latch(samples *[numSampleSlots]sampleSlot, slot uint8) {
	p.next = loopBlock(samples, slot)
}

func (p *paulaVoice) stop() {
	p.active = false
	p.cur = dmaBlock{}
	p.next = dmaBlock{}
	p.pos = 0
}

func (p *paulaVoice) usesSlot(slot uint8) bool {
	return (p.active && p.cur.slot == slot) || (!p.next.isEmpty() && p.next.slot == slot)
}

func (p *paulaVoice) setPeriod(period int, sampleRate uint) {
	p.delta = periodDelta(period, sampleRate)
}

// reload switches to the latched block; overflow is the number of frames
// the cursor went past the end of the previous block.
func (p *paulaVoice) reload(overflow uint64) {
	if p.next.isEmpty() {
		p.active = false
		return
	}
	frac := p.pos & 0xFFFFFFFF
	p.cur = p.next
	overflow %= uint64(p.cur.len())
	p.pos = (uint64(p.cur.start)+overflow)<<32 | frac
}

func (p *paulaVoice) advance() {
	p.pos += p.delta
	if i := p.pos >> 32; i >= uint64(p.cur.end) {
		p.reload(i - uint64(p.cur.end))
	}
}

// position returns the current byte offset inside the sample.
func (p *paulaVoice) position() int {
	if !p.active {
		return 0
	}
	return int(p.pos >> 32)
}
