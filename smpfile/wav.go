package smpfile

import (
	"bytes"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/quasilyte/ptmod/modfile"
)

const wavFormatPCM = 1

func loadWAV(data []byte) (*modfile.Sample, Info, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, Info{Format: FormatWAV}, fault.Wrap(ErrUnsupported, fmsg.With("invalid WAV header"))
	}
	info := Info{
		Format:     FormatWAV,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, info, fault.Wrap(ErrUnsupported, fmsg.With("only integer PCM WAV files are supported"))
	}
	if info.Channels == 0 || info.BitDepth == 0 || info.BitDepth > 32 {
		return nil, info, fault.Wrap(ErrUnsupported, fmsg.With("bad WAV format chunk"))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, info, fault.Wrap(err, fmsg.With("decode WAV data"))
	}

	// Multi-channel files are mixed down to mono.
	frames := len(buf.Data) / info.Channels
	s := &modfile.Sample{
		Volume: 64,
		Data:   make([]int8, frames),
	}
	for i := range s.Data {
		sum := 0
		for _, v := range buf.Data[i*info.Channels : (i+1)*info.Channels] {
			sum += v
		}
		s.Data[i] = pcmToInt8(sum/info.Channels, info.BitDepth)
	}

	meta := wav.NewDecoder(bytes.NewReader(data))
	meta.ReadMetadata()
	if m := meta.Metadata; m != nil {
		s.Name = m.Title
		if m.SamplerInfo != nil && len(m.SamplerInfo.Loops) != 0 {
			// The loop end is inclusive.
			loop := m.SamplerInfo.Loops[0]
			s.LoopStart = int(loop.Start)
			s.LoopLength = int(loop.End) - int(loop.Start) + 1
		}
	}

	return s, info, nil
}

// pcmToInt8 reduces a decoded PCM value to 8 bits.
// The 8-bit WAV data is unsigned, the other depths are signed.
func pcmToInt8(v, bitDepth int) int8 {
	if bitDepth <= 8 {
		return int8(clamp(v-128, -128, 127))
	}
	shift := bitDepth - 8
	return int8(clamp((v+(1<<(shift-1)))>>shift, -128, 127))
}

// wavBitDepth is the depth of the saved files.
// 16 bits keep the 8-bit data exact in both directions.
const wavBitDepth = 16

func saveWAV(w io.WriteSeeker, s *modfile.Sample) error {
	enc := wav.NewEncoder(w, savedSampleRate, wavBitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  savedSampleRate,
		},
		Data:           make([]int, len(s.Data)),
		SourceBitDepth: wavBitDepth,
	}
	for i, v := range s.Data {
		buf.Data[i] = int(v) << 8
	}
	if len(buf.Data) != 0 {
		if err := enc.Write(buf); err != nil {
			return fault.Wrap(err, fmsg.With("write WAV data"))
		}
	}
	if err := enc.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("finish WAV file"))
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
