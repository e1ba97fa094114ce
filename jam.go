package ptmod

import (
	"fmt"

	"github.com/quasilyte/ptmod/internal/ptdb"
	"github.com/quasilyte/ptmod/modfile"
)

// Jam plays a note (1..36) of a sample (1..31) on a channel,
// the way a tracker plays the notes entered from the keyboard.
// A zero sample keeps the channel's current sample.
//
// It works both while the song is stopped and while it's playing;
// in the latter case the next row of the channel may replace the note.
// The triggered note produces an EventNote.
func (tx *Tx) Jam(channel, sample, note int) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, channel)
	}
	if sample < 0 || sample > NumSamples {
		return fmt.Errorf("%w: sample %d", ErrOutOfRange, sample)
	}
	if note < 1 || note > NumNotes {
		return fmt.Errorf("%w: note %d", ErrOutOfRange, note)
	}

	e := tx.e
	v := &e.voices[channel]
	if sample != 0 {
		s := &e.module.samples[sample]
		v.sample = uint8(sample)
		v.volume = int(s.volume)
		v.finetune = s.finetune
	}
	v.effect = ptdb.Effect{}
	v.delayed = cell{}
	e.triggerNote(v, uint8(note))
	v.outPeriod = v.period
	v.outVolume = v.volume
	e.updatePaula(v)
	return nil
}

// RecordNote jams the note and writes it into the current pattern
// at the playback cursor, the way a tracker records in the edit mode.
//
// While the song is playing, the notes that come in the second half
// of a row are quantized to the next row (wrapping inside the pattern).
// The recorded cell has no effect command.
// It returns the row the note was written to.
func (tx *Tx) RecordNote(channel, sample, note int) (int, error) {
	if err := tx.Jam(channel, sample, note); err != nil {
		return 0, err
	}
	e := tx.e
	row := e.row
	if e.playing && !e.rowPending && e.tick*2 >= e.speed {
		row = (row + 1) % NumRows
	}
	e.module.patterns[e.pattern].row(row)[channel] = compileNote(modfile.Note{
		Period: uint16(notePeriod(uint8(note), 0)),
		Sample: e.voices[channel].sample,
	})
	e.module.numPatterns = max(e.module.numPatterns, e.pattern+1)
	e.modified = true
	return row, nil
}

// StopChannel silences a single channel.
func (tx *Tx) StopChannel(channel int) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, channel)
	}
	tx.e.voices[channel].paula.stop()
	return nil
}

func (e *Engine) Jam(channel, sample, note int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.Jam(channel, sample, note)
}

func (e *Engine) RecordNote(channel, sample, note int) (int, error) {
	tx, unlock := e.locked()
	defer unlock()
	return tx.RecordNote(channel, sample, note)
}

func (e *Engine) StopChannel(channel int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.StopChannel(channel)
}
