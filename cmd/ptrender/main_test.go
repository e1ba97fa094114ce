package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/modfile"
)

func newRenderTestEngine(t *testing.T, loop bool) *ptmod.Engine {
	t.Helper()
	m := modfile.NewModule()
	square := make([]int8, 32)
	for i := range square {
		square[i] = 100
		if i >= 16 {
			square[i] = -100
		}
	}
	m.Samples[0] = modfile.Sample{Volume: 64, LoopLength: 32, Data: square}
	m.Patterns[0].Rows[0][0] = modfile.Note{Period: 428, Sample: 1}
	// Stop after 2 rows of speed 1.
	m.Patterns[0].Rows[0][1] = modfile.Note{Effect: 0xF, Param: 0x01}
	m.Patterns[0].Rows[2][1] = modfile.Note{Effect: 0xF, Param: 0x00}

	e, err := ptmod.NewEngine(ptmod.Config{SampleRate: 22050, Loop: loop})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.LoadModule(m); err != nil {
		t.Fatal(err)
	}
	return e
}

func decodeWAV(t *testing.T, path string) (*wav.Decoder, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return dec, buf.NumFrames()
}

func TestRenderWAV(t *testing.T) {
	e := newRenderTestEngine(t, false)
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := renderWAV(f, e, 22050*60)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}

	// 2 ticks of ~441 frames.
	if frames < 880 || frames > 884 {
		t.Errorf("unexpected frame count: %d", frames)
	}

	dec, numFrames := decodeWAV(t, path)
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("unexpected format: rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if numFrames != frames {
		t.Errorf("the file has %d frames, want %d", numFrames, frames)
	}
}

func TestRenderWAVLimit(t *testing.T) {
	// A looped song never ends, the limit stops the render.
	e := newRenderTestEngine(t, true)
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := renderWAV(f, e, 10000)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if frames != 10000 {
		t.Errorf("have %d frames, want 10000", frames)
	}
	if _, numFrames := decodeWAV(t, path); numFrames != 10000 {
		t.Errorf("the file has %d frames", numFrames)
	}
}

func TestNoteRecorder(t *testing.T) {
	e := newRenderTestEngine(t, false)
	notes := &noteRecorder{}
	e.SetEventHandler(notes.handleEvent)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = renderWAV(f, e, 22050*60)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}

	if len(notes.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes.notes))
	}
	n := notes.notes[0]
	if n.channel != 0 || n.key != 60 || n.volume != 64 || n.time != 0 {
		t.Errorf("unexpected note: %+v", n)
	}
	if notes.end < 0.039 || notes.end > 0.041 {
		t.Errorf("unexpected end time: %f", notes.end)
	}

	midiPath := filepath.Join(t.TempDir(), "out.mid")
	if err := writeMIDIFile(midiPath, notes); err != nil {
		t.Fatal(err)
	}
	s, err := smf.ReadFile(midiPath)
	if err != nil {
		t.Fatal(err)
	}
	var ch, key, vel uint8
	found := false
	for _, ev := range s.Tracks[0] {
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			found = true
			if ch != 0 || key != 60 || vel != 127 {
				t.Errorf("unexpected note on: ch=%d key=%d vel=%d", ch, key, vel)
			}
		}
	}
	if !found {
		t.Error("the MIDI file has no notes")
	}
}
