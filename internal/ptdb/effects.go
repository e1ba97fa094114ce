package ptdb

// Effect is a decoded pattern effect command.
//
// Extended Exy commands are flattened into their own ops,
// so Arg holds only the x nibble for them.
type Effect struct {
	Op  EffectOp
	Arg uint8
}

type EffectOp uint8

const (
	EffectNone EffectOp = iota

	// Encoding: effect=0x00, arg!=0
	// Arg: two semitone offsets (x, y)
	EffectArpeggio

	// Encoding: effect=0x01
	// Arg: period decrement per tick
	EffectPortamentoUp

	// Encoding: effect=0x02
	// Arg: period increment per tick
	EffectPortamentoDown

	// Encoding: effect=0x03
	// Arg: slide speed (0 = keep the previous one)
	EffectTonePortamento

	// Encoding: effect=0x04
	// Arg: speed (x), depth (y)
	EffectVibrato

	// Encoding: effect=0x05
	// Arg: volume slide (x up, y down)
	EffectTonePortamentoVolumeSlide

	// Encoding: effect=0x06
	// Arg: volume slide (x up, y down)
	EffectVibratoVolumeSlide

	// Encoding: effect=0x07
	// Arg: speed (x), depth (y)
	EffectTremolo

	// Encoding: effect=0x09
	// Arg: offset in 256-byte pages
	EffectSampleOffset

	// Encoding: effect=0x0A
	// Arg: volume slide (x up, y down)
	EffectVolumeSlide

	// Encoding: effect=0x0B
	// Arg: order position
	EffectPositionJump

	// Encoding: effect=0x0C
	// Arg: volume level, clamped to 64
	EffectSetVolume

	// Encoding: effect=0x0D
	// Arg: target row (already decoded from BCD)
	EffectPatternBreak

	// Encoding: effect=0x0E0x
	// Arg: 0 enables the LED filter, 1 disables it
	EffectSetFilter

	// Encoding: effect=0x0E1x
	EffectFinePortamentoUp

	// Encoding: effect=0x0E2x
	EffectFinePortamentoDown

	// Encoding: effect=0x0E3x
	EffectGlissandoControl

	// Encoding: effect=0x0E4x
	// Arg: waveform (bits 0-1), no-retrigger flag (bit 2)
	EffectVibratoWaveform

	// Encoding: effect=0x0E5x
	EffectSetFinetune

	// Encoding: effect=0x0E6x
	// Arg: 0 sets the loop row, otherwise a loop count
	EffectPatternLoop

	// Encoding: effect=0x0E7x
	EffectTremoloWaveform

	// Encoding: effect=0x0E9x
	// Arg: retrigger interval in ticks
	EffectRetrigger

	// Encoding: effect=0x0EAx
	EffectFineVolumeSlideUp

	// Encoding: effect=0x0EBx
	EffectFineVolumeSlideDown

	// Encoding: effect=0x0ECx
	// Arg: tick number
	EffectNoteCut

	// Encoding: effect=0x0EDx
	// Arg: tick number
	EffectNoteDelay

	// Encoding: effect=0x0EEx
	// Arg: number of rows to repeat
	EffectPatternDelay

	// Encoding: effect=0x0EFx
	// Arg: funk repeat speed
	EffectInvertLoop

	// Encoding: effect=0x0F
	// Arg: speed (<0x20) or tempo, depending on the tempo mode
	EffectSetSpeed

	NumEffectOps
)

var opNames = [NumEffectOps]string{
	EffectNone:                      "none",
	EffectArpeggio:                  "arpeggio",
	EffectPortamentoUp:              "portamento up",
	EffectPortamentoDown:            "portamento down",
	EffectTonePortamento:            "tone portamento",
	EffectVibrato:                   "vibrato",
	EffectTonePortamentoVolumeSlide: "tone portamento + volume slide",
	EffectVibratoVolumeSlide:        "vibrato + volume slide",
	EffectTremolo:                   "tremolo",
	EffectSampleOffset:              "sample offset",
	EffectVolumeSlide:               "volume slide",
	EffectPositionJump:              "position jump",
	EffectSetVolume:                 "set volume",
	EffectPatternBreak:              "pattern break",
	EffectSetFilter:                 "set filter",
	EffectFinePortamentoUp:          "fine portamento up",
	EffectFinePortamentoDown:        "fine portamento down",
	EffectGlissandoControl:          "glissando control",
	EffectVibratoWaveform:           "vibrato waveform",
	EffectSetFinetune:               "set finetune",
	EffectPatternLoop:               "pattern loop",
	EffectTremoloWaveform:           "tremolo waveform",
	EffectRetrigger:                 "retrigger",
	EffectFineVolumeSlideUp:         "fine volume slide up",
	EffectFineVolumeSlideDown:       "fine volume slide down",
	EffectNoteCut:                   "note cut",
	EffectNoteDelay:                 "note delay",
	EffectPatternDelay:              "pattern delay",
	EffectInvertLoop:                "invert loop",
	EffectSetSpeed:                  "set speed",
}

func (op EffectOp) String() string {
	if op < NumEffectOps {
		return opNames[op]
	}
	return "unknown"
}

// X returns the high nibble of the argument.
func (e Effect) X() uint8 { return e.Arg >> 4 }

// Y returns the low nibble of the argument.
func (e Effect) Y() uint8 { return e.Arg & 0x0F }

// IsEmpty reports whether the effect does nothing.
func (e Effect) IsEmpty() bool { return e.Op == EffectNone }

// ConvertEffect decodes a raw pattern effect.
//
// Commands that have no meaning (8xx, E8x, 000) are mapped to EffectNone.
func ConvertEffect(cmd, param uint8) Effect {
	e := Effect{Arg: param}

	switch cmd & 0x0F {
	case 0x00:
		if param != 0 {
			e.Op = EffectArpeggio
		}
	case 0x01:
		e.Op = EffectPortamentoUp
	case 0x02:
		e.Op = EffectPortamentoDown
	case 0x03:
		e.Op = EffectTonePortamento
	case 0x04:
		e.Op = EffectVibrato
	case 0x05:
		e.Op = EffectTonePortamentoVolumeSlide
	case 0x06:
		e.Op = EffectVibratoVolumeSlide
	case 0x07:
		e.Op = EffectTremolo
	case 0x09:
		e.Op = EffectSampleOffset
	case 0x0A:
		e.Op = EffectVolumeSlide
	case 0x0B:
		e.Op = EffectPositionJump
	case 0x0C:
		e.Op = EffectSetVolume
	case 0x0D:
		e.Op = EffectPatternBreak
		e.Arg = (param>>4)*10 + (param & 0x0F)
	case 0x0E:
		e = convertExtendedEffect(param)
	case 0x0F:
		e.Op = EffectSetSpeed
	}

	return e
}

func convertExtendedEffect(param uint8) Effect {
	return Effect{
		Op:  extendedOps[param>>4],
		Arg: param & 0x0F,
	}
}

// IsTonePortamento reports whether the effect suppresses the note trigger
// and uses the note as a slide target instead.
func (e Effect) IsTonePortamento() bool {
	return e.Op == EffectTonePortamento || e.Op == EffectTonePortamentoVolumeSlide
}

var extendedOps = [16]EffectOp{
	0x0: EffectSetFilter,
	0x1: EffectFinePortamentoUp,
	0x2: EffectFinePortamentoDown,
	0x3: EffectGlissandoControl,
	0x4: EffectVibratoWaveform,
	0x5: EffectSetFinetune,
	0x6: EffectPatternLoop,
	0x7: EffectTremoloWaveform,
	0x8: EffectNone,
	0x9: EffectRetrigger,
	0xA: EffectFineVolumeSlideUp,
	0xB: EffectFineVolumeSlideDown,
	0xC: EffectNoteCut,
	0xD: EffectNoteDelay,
	0xE: EffectPatternDelay,
	0xF: EffectInvertLoop,
}
