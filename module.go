package ptmod

import (
	"github.com/quasilyte/ptmod/internal/ptdb"
	"github.com/quasilyte/ptmod/modfile"
)

const (
	NumChannels = modfile.NumChannels
	NumRows     = modfile.NumRows
	NumSamples  = modfile.NumSamples
	MaxOrders   = modfile.MaxOrders
	MaxPatterns = modfile.MaxPatterns

	// Slot 0 is a reserved empty sample.
	numSampleSlots = NumSamples + 1
)

// module is a compiled song: a sample arena and a pattern store.
//
// The engine owns all of its memory; the source modfile.Module
// is never referenced after the compilation.
type module struct {
	name string

	samples [numSampleSlots]sampleSlot

	// loadedSamples are the samples as they were loaded.
	// The slot data is never modified in place, so the slices are shared.
	loadedSamples [numSampleSlots]sampleSlot

	patterns    [MaxPatterns]pattern
	numPatterns int

	orders     [MaxOrders]uint8
	songLength int
}

type sampleSlot struct {
	name string

	data     []int8
	finetune int8
	volume   uint8

	// loopLength=0 means there is no loop.
	loopStart  int
	loopLength int
}

func (s *sampleSlot) isLooped() bool { return s.loopLength != 0 }

func (s *sampleSlot) loopEnd() int { return s.loopStart + s.loopLength }

// playEnd returns the end of the first DMA block.
// A looped sample is never played past its loop end.
func (s *sampleSlot) playEnd() int {
	if s.isLooped() {
		return s.loopEnd()
	}
	return len(s.data)
}

type pattern struct {
	cells [NumRows * NumChannels]cell
}

func (p *pattern) row(i int) []cell {
	offset := i * NumChannels
	return p.cells[offset : offset+NumChannels]
}

type cell struct {
	// note is a 1-based period table index, 0 means "no note".
	note uint8

	// sample is a slot index, 0 means "no sample".
	sample uint8

	effect ptdb.Effect

	// The undecoded effect command, the export writes it back as is.
	// Unused commands like 8xx are often sync markers for the demos.
	cmd   uint8
	param uint8
}

func (c cell) isEmpty() bool { return c == cell{} }
