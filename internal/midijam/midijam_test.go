package midijam

import (
	"io"
	"log/slog"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

type jamRecorder struct {
	notes    []int
	recorded []int
}

func (r *jamRecorder) Jam(channel, sample, note int) error {
	r.notes = append(r.notes, channel*1000+sample*100+note)
	return nil
}

func (r *jamRecorder) RecordNote(channel, sample, note int) (int, error) {
	r.recorded = append(r.recorded, channel*1000+sample*100+note)
	return 0, nil
}

func TestNoteFromKey(t *testing.T) {
	tests := []struct {
		key  uint8
		note int
		ok   bool
	}{
		{47, 0, false},
		{48, 1, true},
		{60, 13, true},
		{83, 36, true},
		{84, 0, false},
	}
	for _, test := range tests {
		note, ok := NoteFromKey(test.key)
		if note != test.note || ok != test.ok {
			t.Errorf("key %d: have (%d, %v), want (%d, %v)", test.key, note, ok, test.note, test.ok)
		}
	}
}

func TestHandleMessage(t *testing.T) {
	r := &jamRecorder{}
	input := &Input{
		target: r,
		config: Config{
			Channel: 2,
			Sample:  5,
			Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}

	input.handleMessage(midi.NoteOn(0, 60, 100))
	input.handleMessage(midi.NoteOff(0, 60))
	input.handleMessage(midi.NoteOn(0, 60, 0)) // a note off in disguise
	input.handleMessage(midi.NoteOn(3, 20, 100))
	input.handleMessage(midi.ControlChange(0, 7, 100))
	input.handleMessage(midi.NoteOn(9, 50, 1))

	want := []int{2513, 2503}
	if len(r.notes) != len(want) {
		t.Fatalf("have %v, want %v", r.notes, want)
	}
	for i := range want {
		if r.notes[i] != want[i] {
			t.Errorf("jam %d: have %d, want %d", i, r.notes[i], want[i])
		}
	}
}

func TestRecordMode(t *testing.T) {
	r := &jamRecorder{}
	input := &Input{
		target: r,
		config: Config{
			Channel: 1,
			Sample:  3,
			Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}

	input.handleMessage(midi.NoteOn(0, 48, 100))
	input.SetRecording(true)
	if !input.Recording() {
		t.Fatal("expected the record mode")
	}
	input.handleMessage(midi.NoteOn(0, 49, 100))
	input.handleMessage(midi.NoteOff(0, 49))
	input.SetRecording(false)
	input.handleMessage(midi.NoteOn(0, 50, 100))

	if len(r.notes) != 2 || r.notes[0] != 1301 || r.notes[1] != 1303 {
		t.Errorf("unexpected jams: %v", r.notes)
	}
	if len(r.recorded) != 1 || r.recorded[0] != 1302 {
		t.Errorf("unexpected recorded notes: %v", r.recorded)
	}
}
