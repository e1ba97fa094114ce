package main

import (
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/quasilyte/ptmod"
)

// noteRecorder collects the note events of the render
// to write them as a standard MIDI file.
//
// Every tracker channel becomes a MIDI channel of the same index.
// A note lasts until the next note of its channel.
type noteRecorder struct {
	notes []recordedNote
	end   float64
}

type recordedNote struct {
	time    float64
	channel int
	key     uint8
	volume  int
}

const (
	midiResolution = 960
	// At 120 BPM a quarter note lasts half a second.
	midiTicksPerSecond = midiResolution * 2
)

func (r *noteRecorder) handleEvent(ev ptmod.Event) {
	r.end = ev.Time
	if ev.Kind != ptmod.EventNote {
		return
	}
	note, _, volume := ev.NoteEventData()
	r.notes = append(r.notes, recordedNote{
		time:    ev.Time,
		channel: ev.Channel,
		// C-1 is MIDI C3.
		key:    uint8(note + 47),
		volume: volume,
	})
}

func (r *noteRecorder) writeTo(w io.Writer) error {
	var track smf.Track
	track.Add(0, smf.MetaTempo(120))

	var playing [ptmod.NumChannels]int
	for i := range playing {
		playing[i] = -1
	}

	var last uint32
	add := func(t float64, msg midi.Message) {
		tick := uint32(t * midiTicksPerSecond)
		track.Add(tick-last, msg)
		last = tick
	}
	for _, n := range r.notes {
		ch := uint8(n.channel)
		if prev := playing[n.channel]; prev != -1 {
			add(n.time, midi.NoteOff(ch, uint8(prev)))
		}
		add(n.time, midi.NoteOn(ch, n.key, uint8(clampVelocity(n.volume))))
		playing[n.channel] = int(n.key)
	}
	for ch, key := range playing {
		if key != -1 {
			add(r.end, midi.NoteOff(uint8(ch), uint8(key)))
		}
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiResolution)
	if err := s.Add(track); err != nil {
		return fault.Wrap(err, fmsg.With("add MIDI track"))
	}
	if _, err := s.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("write MIDI file"))
	}
	return nil
}

// clampVelocity maps a 0..64 volume to a non-zero velocity,
// a zero velocity note-on would be a note-off.
func clampVelocity(volume int) int {
	return min(max(volume*2, 1), 127)
}
