package sampleedit

import (
	"fmt"
	"math"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/modfile"
)

// Upsample halves the sample length by dropping every second byte.
// The result sounds an octave higher when played at the same note.
func Upsample(s *modfile.Sample) error {
	if len(s.Data) == 0 {
		return errEmptySample
	}
	data := make([]int8, (len(s.Data)+1)/2)
	for i := range data {
		data[i] = s.Data[i*2]
	}
	s.Data = data
	s.LoopStart /= 2
	s.LoopLength /= 2
	fixLoop(s)
	return nil
}

// Downsample doubles the sample length, interpolating the new bytes.
// The result sounds an octave lower when played at the same note.
// The samples that would exceed the max length are truncated.
func Downsample(s *modfile.Sample) error {
	if len(s.Data) == 0 {
		return errEmptySample
	}
	n := min(len(s.Data)*2, modfile.MaxSampleLength)
	data := make([]int8, n)
	for i := range data {
		j := i / 2
		if i%2 == 0 || j+1 >= len(s.Data) {
			data[i] = s.Data[j]
			continue
		}
		data[i] = int8((int(s.Data[j]) + int(s.Data[j+1])) >> 1)
	}
	s.Data = data
	s.LoopStart *= 2
	s.LoopLength *= 2
	fixLoop(s)
	return nil
}

// Resample converts the sample tuned to the note from so
// that it sounds the same when played at the note to.
// Both notes are 1..36 and use the sample finetune.
func Resample(s *modfile.Sample, from, to int) error {
	if len(s.Data) == 0 {
		return errEmptySample
	}
	if err := checkNote(from); err != nil {
		return err
	}
	if err := checkNote(to); err != nil {
		return err
	}
	ratio := float64(ptmod.NotePeriod(from, int(s.Finetune))) / float64(ptmod.NotePeriod(to, int(s.Finetune)))
	if ratio == 1 {
		return nil
	}

	n := int(math.Round(float64(len(s.Data)) * ratio))
	n = clamp(n, 1, modfile.MaxSampleLength)
	data := make([]int8, n)
	step := 1 / ratio
	for i := range data {
		data[i] = toInt8(int(math.Round(readLinear(s.Data, float64(i)*step))))
	}
	s.Data = data
	s.LoopStart = int(math.Round(float64(s.LoopStart) * ratio))
	s.LoopLength = int(math.Round(float64(s.LoopLength) * ratio))
	fixLoop(s)
	return nil
}

func readLinear(data []int8, pos float64) float64 {
	i := int(pos)
	if i >= len(data)-1 {
		return float64(data[len(data)-1])
	}
	frac := pos - float64(i)
	return float64(data[i])*(1-frac) + float64(data[i+1])*frac
}

func checkNote(note int) error {
	if note < 1 || note > ptmod.NumNotes {
		return fmt.Errorf("note %d is out of [1, %d] range", note, ptmod.NumNotes)
	}
	return nil
}
