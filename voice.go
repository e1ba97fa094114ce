package ptmod

import (
	"github.com/quasilyte/ptmod/internal/ptdb"
)

// voice is a replayer channel state.
type voice struct {
	id int

	// Sample slot used by the next note trigger.
	sample   uint8
	note     uint8
	period   int
	volume   int
	finetune int8
	effect   ptdb.Effect

	// Values sent to Paula on the current tick.
	// Vibrato, arpeggio and tremolo only change these.
	outPeriod int
	outVolume int

	// Tone portamento state.
	portaSpeed  int
	portaTarget int
	glissando   bool

	vibratoSpeed uint8
	vibratoDepth uint8
	vibratoPos   uint8
	vibratoWave  uint8

	tremoloSpeed uint8
	tremoloDepth uint8
	tremoloPos   uint8
	tremoloWave  uint8

	// Last 9xx offset, in bytes.
	sampleOffset int

	// Pattern loop (E6x) state.
	loopRow   int
	loopCount int

	// Invert loop (EFx) state.
	funkSpeed   uint8
	funkCounter int
	funkPos     int

	// Cell delayed by EDx.
	delayed cell

	muted bool

	paula paulaVoice
}

func (v *voice) reset() {
	*v = voice{
		id:    v.id,
		muted: v.muted,
	}
}

// waveNoRetrigger is an E4x/E7x flag: keep the wave position on new notes.
const waveNoRetrigger = 0x4
