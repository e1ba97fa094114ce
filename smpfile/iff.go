package smpfile

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/quasilyte/ptmod/modfile"
)

// IFF 8SVX layout: a "FORM" container of big-endian chunks,
// VHDR holds the voice header, BODY holds the signed 8-bit data.

const vhdrSize = 20

// iffFullVolume is the 16.16 fixed point 1.0 volume.
const iffFullVolume = 0x10000

func loadIFF(data []byte) (*modfile.Sample, Info, error) {
	info := Info{Format: FormatIFF, Channels: 1, BitDepth: 8}
	s := &modfile.Sample{Volume: 64}

	var (
		haveHeader bool
		oneShot    int
		repeat     int
		body       []byte
	)
	end := min(len(data), 8+int(binary.BigEndian.Uint32(data[4:8])))
	for pos := 12; pos+8 <= end; {
		id := string(data[pos : pos+4])
		size := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		chunk := data[pos+8 : min(pos+8+size, end)]
		switch id {
		case "VHDR":
			if len(chunk) < vhdrSize {
				return nil, info, fault.Wrap(ErrUnsupported, fmsg.With("truncated VHDR chunk"))
			}
			haveHeader = true
			oneShot = int(binary.BigEndian.Uint32(chunk[0:4]))
			repeat = int(binary.BigEndian.Uint32(chunk[4:8]))
			info.SampleRate = int(binary.BigEndian.Uint16(chunk[12:14]))
			if compression := chunk[15]; compression != 0 {
				return nil, info, fault.Wrap(ErrUnsupported, fmsg.With("compressed 8SVX data"))
			}
			volume := int(binary.BigEndian.Uint32(chunk[16:20])) * 64 / iffFullVolume
			if volume > 0 && volume <= 64 {
				s.Volume = uint8(volume)
			}
		case "NAME":
			s.Name = convertCstring(chunk)
		case "BODY":
			body = chunk
		}
		// The chunks are padded to an even size.
		pos += 8 + size + size&1
	}
	if !haveHeader {
		return nil, info, fault.Wrap(ErrUnsupported, fmsg.With("8SVX file without a VHDR chunk"))
	}

	// Multi-octave files store the highest octave first.
	if n := oneShot + repeat; n > 0 && n < len(body) {
		body = body[:n]
	}
	s.Data = make([]int8, len(body))
	for i, b := range body {
		s.Data[i] = int8(b)
	}
	if repeat > 0 {
		s.LoopStart = oneShot
		s.LoopLength = repeat
	}
	return s, info, nil
}

func saveIFF(w io.Writer, s *modfile.Sample) error {
	oneShot := len(s.Data)
	repeat := 0
	if s.LoopLength > 0 {
		oneShot = s.LoopStart
		repeat = s.LoopLength
	}

	var vhdr [vhdrSize]byte
	binary.BigEndian.PutUint32(vhdr[0:4], uint32(oneShot))
	binary.BigEndian.PutUint32(vhdr[4:8], uint32(repeat))
	binary.BigEndian.PutUint16(vhdr[12:14], savedSampleRate)
	vhdr[14] = 1 // octaves
	binary.BigEndian.PutUint32(vhdr[16:20], uint32(s.Volume)*iffFullVolume/64)

	body := make([]byte, len(s.Data))
	for i, v := range s.Data {
		body[i] = byte(v)
	}

	var form bytes.Buffer
	form.WriteString("8SVX")
	writeChunk(&form, "VHDR", vhdr[:])
	if s.Name != "" {
		writeChunk(&form, "NAME", []byte(s.Name))
	}
	writeChunk(&form, "BODY", body)

	var header [8]byte
	copy(header[:], "FORM")
	binary.BigEndian.PutUint32(header[4:], uint32(form.Len()))
	if _, err := w.Write(header[:]); err != nil {
		return fault.Wrap(err, fmsg.With("write IFF header"))
	}
	if _, err := form.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("write IFF chunks"))
	}
	return nil
}

func writeChunk(b *bytes.Buffer, id string, data []byte) {
	b.WriteString(id)
	b.Write(binary.BigEndian.AppendUint32(nil, uint32(len(data))))
	b.Write(data)
	if len(data)%2 != 0 {
		b.WriteByte(0)
	}
}

func convertCstring(data []byte) string {
	if i := bytes.IndexByte(data, 0); i != -1 {
		data = data[:i]
	}
	return string(bytes.TrimRight(data, " "))
}
