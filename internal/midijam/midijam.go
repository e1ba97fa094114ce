// Package midijam plays the notes of a MIDI input device on the engine.
package midijam

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/quasilyte/ptmod"
)

// Jammer is implemented by *ptmod.Engine.
type Jammer interface {
	Jam(channel, sample, note int) error
	RecordNote(channel, sample, note int) (int, error)
}

type Config struct {
	// Device is the input name prefix.
	Device string

	// Channel and Sample select what plays the notes.
	Channel int
	Sample  int

	Logger *slog.Logger
}

// Input is an open MIDI device.
type Input struct {
	target Jammer
	config Config

	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()

	recording atomic.Bool
}

// SetRecording switches between the jam and the record modes.
// In the record mode the notes are also written into the pattern.
func (input *Input) SetRecording(enabled bool) {
	input.recording.Store(enabled)
}

func (input *Input) Recording() bool {
	return input.recording.Load()
}

// baseKey is the MIDI key of the C-1 tracker note (C3 in MIDI terms).
const baseKey = 48

// NoteFromKey maps a MIDI key to a tracker note (1..36).
func NoteFromKey(key uint8) (int, bool) {
	note := int(key) - baseKey + 1
	if note < 1 || note > ptmod.NumNotes {
		return 0, false
	}
	return note, true
}

// Open finds the first input which name starts with config.Device
// and starts listening to it.
func Open(target Jammer, config Config) (*Input, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open MIDI driver"))
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fault.Wrap(err, fmsg.With("list MIDI inputs"))
	}

	var found drivers.In
	for _, in := range ins {
		config.Logger.Debug("MIDI input", "name", in.String())
		if strings.HasPrefix(in.String(), config.Device) {
			found = in
			break
		}
	}
	if found == nil {
		driver.Close()
		return nil, fault.New(fmt.Sprintf("MIDI input %q not found", config.Device))
	}
	if err := found.Open(); err != nil {
		driver.Close()
		return nil, fault.Wrap(err, fmsg.With("open MIDI input"))
	}

	input := &Input{
		target: target,
		config: config,
		driver: driver,
		in:     found,
	}
	stop, err := midi.ListenTo(found, func(msg midi.Message, timestampms int32) {
		input.handleMessage(msg)
	}, midi.HandleError(func(err error) {
		config.Logger.Warn("MIDI listener error", "device", found.String(), "err", err)
	}))
	if err != nil {
		found.Close()
		driver.Close()
		return nil, fault.Wrap(err, fmsg.With("listen to MIDI input"))
	}
	input.stop = stop

	config.Logger.Info("MIDI input opened", "device", found.String())
	return input, nil
}

func (input *Input) handleMessage(msg midi.Message) {
	var ch, key, vel uint8
	if !msg.GetNoteStart(&ch, &key, &vel) {
		return
	}
	note, ok := NoteFromKey(key)
	if !ok {
		input.config.Logger.Debug("MIDI key is out of the note range", "key", key)
		return
	}
	if input.Recording() {
		row, err := input.target.RecordNote(input.config.Channel, input.config.Sample, note)
		if err != nil {
			input.config.Logger.Warn("record failed", "note", ptmod.NoteName(note), "err", err)
			return
		}
		input.config.Logger.Debug("note recorded", "note", ptmod.NoteName(note), "row", row)
		return
	}
	if err := input.target.Jam(input.config.Channel, input.config.Sample, note); err != nil {
		input.config.Logger.Warn("jam failed", "note", ptmod.NoteName(note), "err", err)
	}
}

func (input *Input) Close() {
	if input.stop != nil {
		input.stop()
	}
	input.in.Close()
	input.driver.Close()
}
