// Package smpfile loads and saves single tracker samples.
//
// The supported formats are RIFF WAVE, IFF 8SVX and headerless 8-bit RAW.
// The loaded audio is converted to the 8-bit mono data the replayer plays.
package smpfile

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/quasilyte/ptmod/modfile"
	"github.com/quasilyte/ptmod/sampleedit"
)

type Format int

const (
	FormatWAV Format = iota
	FormatIFF
	FormatRAW
)

func (f Format) String() string {
	switch f {
	case FormatWAV:
		return "WAV"
	case FormatIFF:
		return "IFF"
	case FormatRAW:
		return "RAW"
	default:
		return "unknown"
	}
}

// Ext returns the file extension for the format, with a leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatWAV:
		return ".wav"
	case FormatIFF:
		return ".iff"
	default:
		return ".raw"
	}
}

// ParseFormat converts a format name like "wav" into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "wav":
		return FormatWAV, nil
	case "iff", "8svx":
		return FormatIFF, nil
	case "raw":
		return FormatRAW, nil
	}
	return 0, fault.Wrap(ErrUnsupported, fmsg.With("format "+s))
}

// FormatFromPath picks the format by the file extension.
// Unknown extensions are treated as RAW.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return FormatWAV
	case ".iff", ".8svx", ".svx":
		return FormatIFF
	default:
		return FormatRAW
	}
}

// DetectFormat inspects the file header.
// Any data without a known header is RAW.
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("FORM")) && bytes.Equal(data[8:12], []byte("8SVX")):
		return FormatIFF
	default:
		return FormatRAW
	}
}

var (
	ErrUnsupported = fault.New("unsupported sample format")
	ErrEmpty       = fault.New("the file contains no sample data")
)

// DownsampleThreshold is the source rate above which a tracker
// offers to halve the sample rate on load.
const DownsampleThreshold = 22050

type LoadConfig struct {
	// Downsample halves the sample rate of the loaded data.
	// It's the usual answer for the files above DownsampleThreshold,
	// since they would not fit the max sample length otherwise.
	Downsample bool
}

// Info describes the source file of a loaded sample.
type Info struct {
	Format Format

	// SampleRate is 0 when the format has no rate (RAW).
	SampleRate int
	Channels   int
	BitDepth   int

	Downsampled bool

	// Truncated reports that the data did not fit MaxSampleLength.
	Truncated bool
}

// Load decodes a sample file of any supported format.
func Load(data []byte, config LoadConfig) (*modfile.Sample, Info, error) {
	var (
		s    *modfile.Sample
		info Info
		err  error
	)
	switch format := DetectFormat(data); format {
	case FormatWAV:
		s, info, err = loadWAV(data)
	case FormatIFF:
		s, info, err = loadIFF(data)
	default:
		s, info = loadRAW(data)
	}
	if err != nil {
		return nil, info, err
	}
	if len(s.Data) == 0 {
		return nil, info, ErrEmpty
	}

	if config.Downsample && len(s.Data) > 1 {
		sampleedit.Filter(s, sampleedit.All)
		if err := sampleedit.Upsample(s); err != nil {
			return nil, info, err
		}
		info.Downsampled = true
		if info.SampleRate != 0 {
			info.SampleRate /= 2
		}
	}
	if len(s.Data) > modfile.MaxSampleLength {
		s.Data = s.Data[:modfile.MaxSampleLength]
		info.Truncated = true
	}
	fixLoop(s)
	if len(s.Name) > maxNameLength {
		s.Name = s.Name[:maxNameLength]
	}
	return s, info, nil
}

func loadRAW(data []byte) (*modfile.Sample, Info) {
	s := &modfile.Sample{
		Volume: 64,
		Data:   make([]int8, len(data)),
	}
	for i, b := range data {
		s.Data[i] = int8(b)
	}
	return s, Info{Format: FormatRAW, Channels: 1, BitDepth: 8}
}

// maxNameLength is the sample name field size of a MOD file.
const maxNameLength = 22

// savedSampleRate is the C-3 rate (period 214) the tracker samples are tuned to.
const savedSampleRate = 16574

func fixLoop(s *modfile.Sample) {
	if s.LoopLength <= 0 || s.LoopStart < 0 || s.LoopStart >= len(s.Data) {
		s.LoopStart = 0
		s.LoopLength = 0
		return
	}
	s.LoopLength = min(s.LoopLength, len(s.Data)-s.LoopStart)
	if s.LoopLength < 2 {
		s.LoopStart = 0
		s.LoopLength = 0
	}
}
