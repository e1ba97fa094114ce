package ptmod

import (
	"fmt"

	"github.com/quasilyte/ptmod/internal/ptdb"
	"github.com/quasilyte/ptmod/modfile"
)

type moduleCompiler struct {
	result *module
}

func compileModule(m *modfile.Module) (*module, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, err)
	}
	c := &moduleCompiler{result: &module{}}
	c.compile(m)
	return c.result, nil
}

func (c *moduleCompiler) compile(m *modfile.Module) {
	c.result.name = m.Name

	for i := range m.Samples {
		compileSample(&c.result.samples[i+1], &m.Samples[i])
	}
	c.result.loadedSamples = c.result.samples

	c.result.songLength = copy(c.result.orders[:], m.Orders)
	c.result.numPatterns = len(m.Patterns)
	for i := range m.Patterns {
		c.compilePattern(&c.result.patterns[i], &m.Patterns[i])
	}
}

func (c *moduleCompiler) compilePattern(dst *pattern, src *modfile.Pattern) {
	for row := range src.Rows {
		cells := dst.row(row)
		for ch, n := range src.Rows[row] {
			cells[ch] = compileNote(n)
		}
	}
}

// compileNote converts a raw pattern cell.
// Periods that are not in the table are mapped to the closest note,
// unknown sample numbers are dropped.
func compileNote(n modfile.Note) cell {
	c := cell{
		note:   noteFromPeriod(n.Period & 0x0FFF),
		effect: ptdb.ConvertEffect(n.Effect, n.Param),
		cmd:    n.Effect & 0x0F,
		param:  n.Param,
	}
	if n.Sample <= NumSamples {
		c.sample = n.Sample
	}
	return c
}

// decompileCell is the inverse of compileNote.
// The finetune 0 periods are used for the notes.
func decompileCell(c cell) modfile.Note {
	return modfile.Note{
		Period: uint16(notePeriod(c.note, 0)),
		Sample: c.sample,
		Effect: c.cmd,
		Param:  c.param,
	}
}

func validateSample(s *modfile.Sample) error {
	if len(s.Data) > modfile.MaxSampleLength {
		return fmt.Errorf("%w: sample is too long (%d bytes)", ErrOutOfRange, len(s.Data))
	}
	if s.Volume > 64 {
		return fmt.Errorf("%w: sample volume %d", ErrOutOfRange, s.Volume)
	}
	if s.Finetune < -8 || s.Finetune > 7 {
		return fmt.Errorf("%w: sample finetune %d", ErrOutOfRange, s.Finetune)
	}
	if s.LoopStart < 0 || s.LoopLength < 0 || s.LoopStart+s.LoopLength > len(s.Data) {
		return fmt.Errorf("%w: sample loop [%d, +%d)", ErrOutOfRange, s.LoopStart, s.LoopLength)
	}
	return nil
}

func compileSample(dst *sampleSlot, src *modfile.Sample) {
	*dst = sampleSlot{
		name:       src.Name,
		finetune:   src.Finetune,
		volume:     src.Volume,
		loopStart:  src.LoopStart,
		loopLength: src.LoopLength,
	}
	if len(src.Data) != 0 {
		dst.data = make([]int8, len(src.Data))
		copy(dst.data, src.Data)
	}
	if dst.loopLength == 0 {
		dst.loopStart = 0
	}
}
