package modfile

import (
	"fmt"
	"io"
)

const (
	NumSamples  = 31
	NumChannels = 4
	NumRows     = 64

	MaxOrders   = 128
	MaxPatterns = 100

	// MaxSampleLength is the longest sample (in bytes/frames) the replayer accepts.
	MaxSampleLength = 65534
)

// Module is a parsed ProTracker module.
// This is a raw format that mirrors the file layout; the replayer
// compiles it into its own representation when loading.
type Module struct {
	Name string

	Format Format

	Samples [NumSamples]Sample

	// Orders is the song order list.
	// len(Orders) is the song length.
	Orders []uint8

	// RestartPosition is only meaningful for NoiseTracker modules.
	RestartPosition int

	Patterns []Pattern
}

type Format int

const (
	// FormatMK is ProTracker or compatible ("M.K.", "M!K!").
	FormatMK Format = iota

	// FormatFLT is a 4-channel StarTrekker module ("FLT4").
	FormatFLT

	// FormatFT2 is a 4-channel module saved by FastTracker ("4CHN").
	FormatFT2

	// FormatSTK is The Ultimate SoundTracker (15 samples, no tag).
	FormatSTK

	// FormatNT is NoiseTracker ("N.T.").
	FormatNT

	// FormatHMNT is His Master's NoiseTracker ("M&K!", "FEST").
	FormatHMNT
)

func (f Format) String() string {
	switch f {
	case FormatMK:
		return "ProTracker"
	case FormatFLT:
		return "StarTrekker"
	case FormatFT2:
		return "FastTracker"
	case FormatSTK:
		return "Ultimate SoundTracker"
	case FormatNT:
		return "NoiseTracker"
	case FormatHMNT:
		return "His Master's NoiseTracker"
	default:
		return "unknown"
	}
}

type Pattern struct {
	Rows [NumRows][NumChannels]Note
}

// Note is a single pattern cell.
type Note struct {
	// Period is a raw Amiga period, 0 means "no note".
	Period uint16

	// Sample is a 1-based sample number, 0 means "no sample".
	Sample uint8

	Effect uint8
	Param  uint8
}

func (n Note) IsEmpty() bool {
	return n == Note{}
}

type Sample struct {
	Name string

	// Finetune is in -8..7 range.
	Finetune int8

	// Volume is in 0..64 range.
	Volume uint8

	// LoopStart and LoopLength are in bytes.
	// LoopLength=0 means the sample is not looped.
	LoopStart  int
	LoopLength int

	Data []int8
}

func (s *Sample) Length() int { return len(s.Data) }

func (s *Sample) IsLooped() bool { return s.LoopLength > 0 }

// NewModule returns an empty song: a single order that
// refers to a single empty pattern.
func NewModule() *Module {
	return &Module{
		Format:   FormatMK,
		Orders:   []uint8{0},
		Patterns: make([]Pattern, 1),
	}
}

// NumUsedPatterns returns the number of patterns the order list refers to.
func (m *Module) NumUsedPatterns() int {
	n := 0
	for _, p := range m.Orders {
		if int(p)+1 > n {
			n = int(p) + 1
		}
	}
	return n
}

// Validate checks that the module fits the replayer limits.
func (m *Module) Validate() error {
	if len(m.Orders) == 0 || len(m.Orders) > MaxOrders {
		return fmt.Errorf("invalid song length: %d", len(m.Orders))
	}
	if len(m.Patterns) > MaxPatterns {
		return fmt.Errorf("too many patterns: %d (max %d)", len(m.Patterns), MaxPatterns)
	}
	for i, p := range m.Orders {
		if int(p) >= len(m.Patterns) {
			return fmt.Errorf("order %d refers to a missing pattern %d", i, p)
		}
	}
	for i := range m.Samples {
		s := &m.Samples[i]
		if len(s.Data) > MaxSampleLength {
			return fmt.Errorf("sample %d is too long: %d bytes", i+1, len(s.Data))
		}
		if s.Volume > 64 {
			return fmt.Errorf("sample %d volume is out of range: %d", i+1, s.Volume)
		}
		if s.Finetune < -8 || s.Finetune > 7 {
			return fmt.Errorf("sample %d finetune is out of range: %d", i+1, s.Finetune)
		}
		if s.LoopStart < 0 || s.LoopLength < 0 || s.LoopStart+s.LoopLength > len(s.Data) {
			return fmt.Errorf("sample %d loop [%d, +%d) is out of bounds", i+1, s.LoopStart, s.LoopLength)
		}
	}
	return nil
}

// ParserConfig configures the module parser.
type ParserConfig struct {
	// NeedStrings makes the parser decode the song and sample names.
	// When false, these strings are left empty.
	NeedStrings bool
}

// Parser decodes module files.
// A single parser can be used to decode several modules,
// it will re-use the sample memory between the calls.
type Parser struct {
	impl *parser
}

func NewParser(config ParserConfig) *Parser {
	return &Parser{impl: newParser(config)}
}

// ParseFromBytes decodes a module.
//
// The returned module shares the memory with the parser:
// it is only valid until the next Parse call.
// A non-nil error is usually a *ParseError object.
func (p *Parser) ParseFromBytes(data []byte) (*Module, error) {
	if err := p.impl.Parse(data); err != nil {
		return nil, err
	}
	m := p.impl.module
	return &m, nil
}

// Parse reads the module file data and decodes it.
//
// A non-nil error is usually a *ParseError object.
func Parse(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	p := newParser(ParserConfig{NeedStrings: true})
	if err := p.Parse(data); err != nil {
		return nil, err
	}
	return &p.module, nil
}
