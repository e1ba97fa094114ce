package sampleedit

import (
	"fmt"
	"math"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/modfile"
)

// PatternToSample renders a single pass of the pattern into a new sample.
//
// The output rate is the Paula rate of the note (1..36), so the result
// sounds like the pattern when triggered at this note.
// The notes below C-2 would need a rate below 8 kHz and are rejected.
//
// The render stops after 64 rows, at an F00 command or when
// the sample reaches the max length.
func PatternToSample(m *modfile.Module, pattern, note int) (*modfile.Sample, error) {
	if err := checkNote(note); err != nil {
		return nil, err
	}
	rate := uint(math.Round(ptmod.PeriodFrequency(ptmod.NotePeriod(note, 0))))
	e, err := ptmod.NewEngine(ptmod.Config{SampleRate: rate})
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", ptmod.NoteName(note), err)
	}
	if err := e.LoadModule(m); err != nil {
		return nil, err
	}
	e.SetStereoSeparation(0)

	endFrame := -1
	rows := 0
	e.SetEventHandler(func(ev ptmod.Event) {
		if endFrame != -1 {
			return
		}
		switch ev.Kind {
		case ptmod.EventRow:
			rows++
			if rows > modfile.NumRows {
				endFrame = int(math.Round(ev.Time * float64(rate)))
			}
		case ptmod.EventSongEnd:
			endFrame = int(math.Round(ev.Time * float64(rate)))
		}
	})
	if err := e.PlayPattern(pattern, 0); err != nil {
		return nil, err
	}

	data := make([]int8, 0, 8192)
	buf := make([]int16, 2048)
	for len(data) < modfile.MaxSampleLength {
		n, _ := e.Fill(buf)
		for i := 0; i < n; i++ {
			mono := (int(buf[i*2]) + int(buf[i*2+1])) / 2
			data = append(data, int8(mono>>8))
		}
		if endFrame != -1 && len(data) >= endFrame {
			break
		}
	}
	if endFrame != -1 && endFrame < len(data) {
		data = data[:endFrame]
	}
	if len(data) > modfile.MaxSampleLength {
		data = data[:modfile.MaxSampleLength]
	}

	s := &modfile.Sample{
		Name:   fmt.Sprintf("pattern %02d", pattern),
		Volume: 64,
		Data:   data,
	}
	Normalize(s, All)
	return s, nil
}
