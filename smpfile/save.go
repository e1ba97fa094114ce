package smpfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/quasilyte/ptmod/modfile"
)

// Save writes the sample in the given format.
//
// WAV files are written as 16-bit mono at the C-3 rate.
// Only the IFF format keeps the sample loop and volume.
func Save(w io.WriteSeeker, s *modfile.Sample, format Format) error {
	if len(s.Data) == 0 {
		return ErrEmpty
	}
	switch format {
	case FormatWAV:
		return saveWAV(w, s)
	case FormatIFF:
		return saveIFF(w, s)
	case FormatRAW:
		return saveRAW(w, s)
	}
	return fault.Wrap(ErrUnsupported, fmsg.With(format.String()))
}

func saveRAW(w io.Writer, s *modfile.Sample) error {
	data := make([]byte, len(s.Data))
	for i, v := range s.Data {
		data[i] = byte(v)
	}
	if _, err := w.Write(data); err != nil {
		return fault.Wrap(err, fmsg.With("write RAW data"))
	}
	return nil
}

// SaveFile creates the file and saves the sample into it.
func SaveFile(path string, s *modfile.Sample, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create sample file"))
	}
	if err := Save(f, s, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close sample file"))
	}
	return nil
}

// SaveAll saves every non-empty sample of the module into dir.
// The files are named after the sample number and name, like "01 bass.wav".
// It returns the paths of the written files.
func SaveAll(dir string, m *modfile.Module, format Format) ([]string, error) {
	var paths []string
	for i := range m.Samples {
		s := &m.Samples[i]
		if len(s.Data) == 0 {
			continue
		}
		path := filepath.Join(dir, SampleFilename(i+1, s.Name, format))
		if err := SaveFile(path, s, format); err != nil {
			return paths, fault.Wrap(err, fmsg.With(fmt.Sprintf("save sample %02d", i+1)))
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SampleFilename builds a file name that is safe for most file systems.
func SampleFilename(index int, name string, format Format) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < ' ' || r > '~':
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("%02d%s", index, format.Ext())
	}
	return fmt.Sprintf("%02d %s%s", index, name, format.Ext())
}
