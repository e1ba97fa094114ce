package sampleedit

import (
	"errors"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/modfile"
)

const maxChordNotes = 4

// Chord mixes up to 4 transpositions of the sample into a new sample.
//
// The result plays the chord when triggered at the base note.
// Its length is the base note length; the notes below the base are cut.
// The looped samples keep looping inside every voice, the result itself is one-shot.
func Chord(s *modfile.Sample, base int, notes ...int) (*modfile.Sample, error) {
	if len(s.Data) == 0 {
		return nil, errEmptySample
	}
	if len(notes) == 0 || len(notes) > maxChordNotes {
		return nil, errors.New("a chord needs 1 to 4 notes")
	}
	if err := checkNote(base); err != nil {
		return nil, err
	}
	basePeriod := float64(ptmod.NotePeriod(base, int(s.Finetune)))
	steps := make([]float64, len(notes))
	for i, note := range notes {
		if err := checkNote(note); err != nil {
			return nil, err
		}
		steps[i] = basePeriod / float64(ptmod.NotePeriod(note, int(s.Finetune)))
	}

	mix := make([]int, len(s.Data))
	for _, step := range steps {
		pos := 0.0
		for i := range mix {
			j, ok := chordIndex(s, pos)
			if !ok {
				break
			}
			mix[i] += int(s.Data[j])
			pos += step
		}
	}

	result := &modfile.Sample{
		Name:     s.Name,
		Volume:   s.Volume,
		Finetune: s.Finetune,
		Data:     make([]int8, len(mix)),
	}
	for i, v := range mix {
		result.Data[i] = toInt8(v / len(steps))
	}
	Normalize(result, All)
	return result, nil
}

func chordIndex(s *modfile.Sample, pos float64) (int, bool) {
	i := int(pos)
	if s.IsLooped() {
		loopEnd := s.LoopStart + s.LoopLength
		if i >= loopEnd {
			i = s.LoopStart + (i-loopEnd)%s.LoopLength
		}
		return i, true
	}
	return i, i < len(s.Data)
}
