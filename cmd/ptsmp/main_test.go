package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/quasilyte/ptmod/modfile"
	"github.com/quasilyte/ptmod/smpfile"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestSong(t *testing.T, dir string) string {
	t.Helper()
	m := modfile.NewModule()
	m.Name = "samples"
	m.Samples[0] = modfile.Sample{Name: "kick", Volume: 64, Data: []int8{10, 20, 30, 40}}
	m.Samples[1] = modfile.Sample{Name: "pad", Volume: 32, LoopStart: 2, LoopLength: 4, Data: []int8{1, 2, 3, 4, 5, 6}}
	m.Patterns[0].Rows[0][0] = modfile.Note{Period: 428, Sample: 1}

	path := filepath.Join(dir, "song.mod")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := modfile.Encode(f, m); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestWAV(t *testing.T, path string, rate, numFrames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	frames := make([]int, numFrames)
	for i := range frames {
		frames[i] = 32 << 8
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           frames,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExportSamples(t *testing.T) {
	dir := t.TempDir()
	song := writeTestSong(t, dir)
	out := filepath.Join(dir, "samples")

	if err := exportSamples(song, out, smpfile.FormatIFF, newTestLogger()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "02 pad.iff"))
	if err != nil {
		t.Fatal(err)
	}
	s, _, err := smpfile.Load(data, smpfile.LoadConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "pad" || s.Volume != 32 || s.LoopStart != 2 || s.LoopLength != 4 {
		t.Errorf("unexpected sample: %q vol %d loop [%d, +%d)", s.Name, s.Volume, s.LoopStart, s.LoopLength)
	}
	if _, err := os.Stat(filepath.Join(out, "01 kick.iff")); err != nil {
		t.Error(err)
	}
}

func TestImportSample(t *testing.T) {
	tests := []struct {
		name       string
		slot       int
		keepRate   bool
		wantSlot   int
		wantLength int
	}{
		{"first empty slot", 0, false, 3, 200},
		{"replace", 1, false, 1, 200},
		{"keep rate", 0, true, 3, 400},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			song := writeTestSong(t, dir)
			wavPath := filepath.Join(dir, "snare.wav")
			writeTestWAV(t, wavPath, 44100, 400)

			opts := importOptions{
				song:     song,
				sample:   wavPath,
				output:   filepath.Join(dir, "out.mod"),
				slot:     test.slot,
				keepRate: test.keepRate,
			}
			if err := importSample(opts, newTestLogger()); err != nil {
				t.Fatal(err)
			}

			m, err := loadModule(opts.output)
			if err != nil {
				t.Fatal(err)
			}
			s := m.Samples[test.wantSlot-1]
			if s.Name != "snare" || len(s.Data) != test.wantLength {
				t.Fatalf("slot %d: have %q with %d bytes", test.wantSlot, s.Name, len(s.Data))
			}
			if s.Data[10] != 32 {
				t.Errorf("unexpected level %d", s.Data[10])
			}
			if !slices.Equal(m.Samples[1].Data, []int8{1, 2, 3, 4, 5, 6}) {
				t.Errorf("the other samples are changed: %v", m.Samples[1].Data)
			}
			if m.Patterns[0].Rows[0][0] != (modfile.Note{Period: 428, Sample: 1}) {
				t.Errorf("the pattern data is changed: %+v", m.Patterns[0].Rows[0][0])
			}
		})
	}
}

func TestImportNoEmptySlots(t *testing.T) {
	dir := t.TempDir()
	m := modfile.NewModule()
	for i := range m.Samples {
		m.Samples[i] = modfile.Sample{Volume: 64, Data: []int8{1, 2}}
	}
	song := filepath.Join(dir, "full.mod")
	f, err := os.Create(song)
	if err != nil {
		t.Fatal(err)
	}
	if err := modfile.Encode(f, m); err != nil {
		t.Fatal(err)
	}
	f.Close()
	raw := filepath.Join(dir, "x.raw")
	if err := os.WriteFile(raw, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}

	err = importSample(importOptions{song: song, sample: raw, output: song}, newTestLogger())
	if err == nil {
		t.Fatal("expected an error")
	}
}
