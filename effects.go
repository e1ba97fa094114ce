package ptmod

import (
	"github.com/quasilyte/ptmod/internal/ptdb"
)

func (e *Engine) playCell(v *voice, c cell) {
	v.effect = c.effect
	v.delayed = cell{}

	if c.effect.Op == ptdb.EffectNoteDelay && c.effect.Arg != 0 {
		v.delayed = c
	} else {
		e.loadCell(v, c)
	}

	v.outPeriod = v.period
	v.outVolume = v.volume
	if !v.effect.IsEmpty() {
		e.applyRowEffect(v)
	}
	e.updatePaula(v)
}

// loadCell applies the note and the sample number of the cell.
func (e *Engine) loadCell(v *voice, c cell) {
	if c.sample != 0 {
		s := &e.module.samples[c.sample]
		v.sample = c.sample
		v.volume = int(s.volume)
		v.finetune = s.finetune
		// Without a note, the new sample starts after the current block.
		v.paula.latch(&e.module.samples, c.sample)
	}

	if c.note == 0 {
		return
	}
	if c.effect.Op == ptdb.EffectSetFinetune {
		v.finetune = decodeFinetune(c.effect.Arg)
	}
	if c.effect.IsTonePortamento() {
		v.portaTarget = notePeriod(c.note, v.finetune)
		if v.portaTarget == v.period {
			v.portaTarget = 0
		}
		return
	}
	e.triggerNote(v, c.note)
}

func (e *Engine) triggerNote(v *voice, note uint8) {
	v.note = note
	v.period = notePeriod(note, v.finetune)
	if v.vibratoWave&waveNoRetrigger == 0 {
		v.vibratoPos = 0
	}
	if v.tremoloWave&waveNoRetrigger == 0 {
		v.tremoloPos = 0
	}

	offset := 0
	if v.effect.Op == ptdb.EffectSampleOffset {
		if v.effect.Arg != 0 {
			v.sampleOffset = int(v.effect.Arg) << 8
		}
		offset = v.sampleOffset
	}
	v.paula.trigger(&e.module.samples, v.sample, offset)

	e.emit(Event{
		Kind:    EventNote,
		Channel: v.id,
		value:   makeEventValue(int(note), int(v.sample), v.volume),
	})
}

func (e *Engine) applyRowEffect(v *voice) {
	eff := v.effect

	switch eff.Op {
	case ptdb.EffectTonePortamento:
		if eff.Arg != 0 {
			v.portaSpeed = int(eff.Arg)
		}

	case ptdb.EffectVibrato:
		if eff.X() != 0 {
			v.vibratoSpeed = eff.X()
		}
		if eff.Y() != 0 {
			v.vibratoDepth = eff.Y()
		}

	case ptdb.EffectTremolo:
		if eff.X() != 0 {
			v.tremoloSpeed = eff.X()
		}
		if eff.Y() != 0 {
			v.tremoloDepth = eff.Y()
		}

	case ptdb.EffectSampleOffset:
		if eff.Arg != 0 {
			v.sampleOffset = int(eff.Arg) << 8
		}

	case ptdb.EffectPositionJump:
		e.jumpOrder = int(eff.Arg)
		e.breakRow = 0
		e.posJump = true

	case ptdb.EffectSetVolume:
		v.volume = clampMax(int(eff.Arg), 64)
		v.outVolume = v.volume

	case ptdb.EffectPatternBreak:
		row := int(eff.Arg)
		if row >= NumRows {
			row = 0
		}
		e.breakRow = row
		e.posJump = true

	case ptdb.EffectSetFilter:
		e.mixer.setLED(eff.Arg&1 == 0)

	case ptdb.EffectFinePortamentoUp:
		if v.period != 0 {
			v.period = clampMin(v.period-int(eff.Arg), minPeriod)
			v.outPeriod = v.period
		}

	case ptdb.EffectFinePortamentoDown:
		if v.period != 0 {
			v.period = clampMax(v.period+int(eff.Arg), maxPeriod)
			v.outPeriod = v.period
		}

	case ptdb.EffectGlissandoControl:
		v.glissando = eff.Arg != 0

	case ptdb.EffectVibratoWaveform:
		v.vibratoWave = eff.Arg

	case ptdb.EffectTremoloWaveform:
		v.tremoloWave = eff.Arg

	case ptdb.EffectSetFinetune:
		v.finetune = decodeFinetune(eff.Arg)

	case ptdb.EffectPatternLoop:
		e.patternLoop(v, eff.Arg)

	case ptdb.EffectFineVolumeSlideUp:
		v.volume = clampMax(v.volume+int(eff.Arg), 64)
		v.outVolume = v.volume

	case ptdb.EffectFineVolumeSlideDown:
		v.volume = clampMin(v.volume-int(eff.Arg), 0)
		v.outVolume = v.volume

	case ptdb.EffectNoteCut:
		if eff.Arg == 0 {
			v.volume = 0
			v.outVolume = 0
		}

	case ptdb.EffectPatternDelay:
		if e.patternDelay == 0 {
			e.patternDelay = int(eff.Arg)
		}

	case ptdb.EffectInvertLoop:
		v.funkSpeed = eff.Arg
		if v.funkSpeed != 0 {
			e.updateFunk(v)
		}

	case ptdb.EffectSetSpeed:
		e.setSpeedCommand(eff.Arg)
	}
}

func (e *Engine) applyTickEffect(v *voice) {
	eff := v.effect

	switch eff.Op {
	case ptdb.EffectArpeggio:
		e.arpeggio(v)

	case ptdb.EffectPortamentoUp:
		if v.period != 0 {
			v.period = clampMin(v.period-int(eff.Arg), minPeriod)
			v.outPeriod = v.period
		}

	case ptdb.EffectPortamentoDown:
		if v.period != 0 {
			v.period = clampMax(v.period+int(eff.Arg), maxPeriod)
			v.outPeriod = v.period
		}

	case ptdb.EffectTonePortamento:
		e.tonePortamento(v)

	case ptdb.EffectVibrato:
		e.vibrato(v)

	case ptdb.EffectTonePortamentoVolumeSlide:
		e.tonePortamento(v)
		e.volumeSlide(v, eff.Arg)

	case ptdb.EffectVibratoVolumeSlide:
		e.vibrato(v)
		e.volumeSlide(v, eff.Arg)

	case ptdb.EffectTremolo:
		e.tremolo(v)

	case ptdb.EffectVolumeSlide:
		e.volumeSlide(v, eff.Arg)

	case ptdb.EffectRetrigger:
		if eff.Arg != 0 && v.note != 0 && e.tick%int(eff.Arg) == 0 {
			v.paula.trigger(&e.module.samples, v.sample, 0)
			e.emit(Event{
				Kind:    EventNote,
				Channel: v.id,
				value:   makeEventValue(int(v.note), int(v.sample), v.volume),
			})
		}

	case ptdb.EffectNoteCut:
		if e.tick == int(eff.Arg) {
			v.volume = 0
			v.outVolume = 0
		}

	case ptdb.EffectNoteDelay:
		if e.tick == int(eff.Arg) && !v.delayed.isEmpty() {
			e.loadCell(v, v.delayed)
			v.delayed = cell{}
			v.outPeriod = v.period
			v.outVolume = v.volume
		}
	}
}

func (e *Engine) setSpeedCommand(arg uint8) {
	switch {
	case arg == 0:
		e.stopRequested = true
	case e.settings.tempoMode == TempoVBlank || arg < 0x20:
		e.speed = int(arg)
	default:
		e.setTempo(int(arg))
	}
}

func (e *Engine) patternLoop(v *voice, count uint8) {
	if count == 0 {
		v.loopRow = e.row
		return
	}
	if v.loopCount == 0 {
		v.loopCount = int(count)
	} else {
		v.loopCount--
		if v.loopCount == 0 {
			return
		}
	}
	e.loopJump = true
	e.loopJumpRow = v.loopRow
}

func (e *Engine) volumeSlide(v *voice, arg uint8) {
	if up := int(arg >> 4); up != 0 {
		v.volume = clampMax(v.volume+up, 64)
	} else {
		v.volume = clampMin(v.volume-int(arg&0x0F), 0)
	}
	v.outVolume = v.volume
}

func (e *Engine) arpeggio(v *voice) {
	var semitones uint8
	switch e.tick % 3 {
	case 1:
		semitones = v.effect.X()
	case 2:
		semitones = v.effect.Y()
	default:
		return
	}
	if v.period == 0 {
		return
	}
	row := finetuneRow(v.finetune)
	i := clampMax(noteIndex(row, v.period)+int(semitones), NumNotes-1)
	v.outPeriod = int(row[i])
}

func (e *Engine) tonePortamento(v *voice) {
	if v.portaTarget == 0 || v.period == 0 {
		return
	}
	if v.period > v.portaTarget {
		v.period -= v.portaSpeed
		if v.period <= v.portaTarget {
			v.period = v.portaTarget
			v.portaTarget = 0
		}
	} else {
		v.period += v.portaSpeed
		if v.period >= v.portaTarget {
			v.period = v.portaTarget
			v.portaTarget = 0
		}
	}
	v.outPeriod = v.period
	if v.glissando {
		row := finetuneRow(v.finetune)
		v.outPeriod = int(row[noteIndex(row, v.period)])
	}
}

// waveValue returns the unsigned wave amplitude in [0, 255].
// The ramp direction is taken from rampPos, the tremolo
// uses the vibrato position there like ProTracker does.
func waveValue(wave, pos, rampPos uint8) int {
	i := (pos >> 2) & 0x1F
	switch wave & 3 {
	case 0:
		return int(vibratoTable[i])
	case 1:
		v := int(i) << 3
		if rampPos&0x80 != 0 {
			v = 255 - v
		}
		return v
	default:
		return 255
	}
}

func (e *Engine) vibrato(v *voice) {
	delta := waveValue(v.vibratoWave, v.vibratoPos, v.vibratoPos) * int(v.vibratoDepth) >> 7
	if v.vibratoPos&0x80 == 0 {
		v.outPeriod = v.period + delta
	} else {
		v.outPeriod = v.period - delta
	}
	v.vibratoPos += v.vibratoSpeed * 4
}

func (e *Engine) tremolo(v *voice) {
	delta := waveValue(v.tremoloWave, v.tremoloPos, v.vibratoPos) * int(v.tremoloDepth) >> 6
	if v.tremoloPos&0x80 == 0 {
		v.outVolume = v.volume + delta
	} else {
		v.outVolume = v.volume - delta
	}
	v.outVolume = clamp(v.outVolume, 0, 64)
	v.tremoloPos += v.tremoloSpeed * 4
}

// updateFunk runs the EFx "invert loop": the loop bytes are
// inverted one by one, at the rate given by the funk table.
func (e *Engine) updateFunk(v *voice) {
	v.funkCounter += int(funkTable[v.funkSpeed&0x0F])
	if v.funkCounter < 128 {
		return
	}
	v.funkCounter = 0

	s := &e.module.samples[v.sample]
	if !s.isLooped() {
		return
	}
	v.funkPos++
	if v.funkPos >= s.loopLength {
		v.funkPos = 0
	}
	i := s.loopStart + v.funkPos
	s.data[i] = -1 - s.data[i]
}
