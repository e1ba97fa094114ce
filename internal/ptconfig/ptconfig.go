// Package ptconfig loads the player configuration files.
//
// A config file is a YAML document:
//
//	sample_rate: 48000
//	filter: a500
//	led_filter: false
//	stereo_separation: 30
//	tempo_mode: cia
//	loop: true
//	log_level: info
//	midi:
//	  device: "USB MIDI"
//	  channel: 0
//	  sample: 1
//
// Every field is optional. Unknown fields are rejected.
package ptconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/quasilyte/ptmod"
)

type File struct {
	SampleRate       uint    `yaml:"sample_rate"`
	Filter           string  `yaml:"filter"`
	LEDFilter        bool    `yaml:"led_filter"`
	StereoSeparation *int    `yaml:"stereo_separation"`
	TempoMode        string  `yaml:"tempo_mode"`
	Loop             bool    `yaml:"loop"`
	Tempo            uint    `yaml:"tempo"`
	Speed            uint    `yaml:"speed"`
	Amplification    float64 `yaml:"amplification"`

	LogLevel string `yaml:"log_level"`

	MIDI MIDI `yaml:"midi"`
}

// MIDI configures the jam input.
type MIDI struct {
	// Device is a MIDI input name prefix.
	// An empty string disables the MIDI input.
	Device string `yaml:"device"`

	// Channel is the tracker channel (0..3) that plays the notes.
	Channel int `yaml:"channel"`

	// Sample is the jammed sample (1..31).
	// A zero value means sample 1.
	Sample int `yaml:"sample"`
}

// Load reads the config file.
// An empty path returns the defaults, a leading "~" is the home directory.
//
// A missing file error is tagged with ftag.NotFound.
func Load(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("expand config path"))
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fault.Wrap(err, fmsg.With("read config"), ftag.With(ftag.NotFound))
	}
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read config"))
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(path))
	}
	return f, nil
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fault.Wrap(err, fmsg.With("decode config"))
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if _, err := parseFilter(f.Filter); err != nil {
		return err
	}
	if _, err := parseTempoMode(f.TempoMode); err != nil {
		return err
	}
	if f.MIDI.Channel < 0 || f.MIDI.Channel >= ptmod.NumChannels {
		return fault.New(fmt.Sprintf("midi channel %d is out of [0, %d] range", f.MIDI.Channel, ptmod.NumChannels-1))
	}
	if f.MIDI.Sample < 0 || f.MIDI.Sample > ptmod.NumSamples {
		return fault.New(fmt.Sprintf("midi sample %d is out of [1, %d] range", f.MIDI.Sample, ptmod.NumSamples))
	}
	return nil
}

// EngineConfig converts the file settings into the engine config.
// The engine itself validates the numeric ranges.
func (f *File) EngineConfig() ptmod.Config {
	filter, _ := parseFilter(f.Filter)
	tempoMode, _ := parseTempoMode(f.TempoMode)
	config := ptmod.Config{
		SampleRate:    f.SampleRate,
		FilterModel:   filter,
		LEDFilter:     f.LEDFilter,
		TempoMode:     tempoMode,
		Loop:          f.Loop,
		Tempo:         f.Tempo,
		Speed:         f.Speed,
		Amplification: f.Amplification,
	}
	if f.StereoSeparation != nil {
		config.StereoSeparation = *f.StereoSeparation
	}
	return config
}

// Mono reports whether the file asks for an explicit zero stereo separation.
// The engine config treats zero as "default", so the callers
// need to apply it with Engine.SetStereoSeparation.
func (f *File) Mono() bool {
	return f.StereoSeparation != nil && *f.StereoSeparation == 0
}

func (m MIDI) JamSample() int {
	if m.Sample == 0 {
		return 1
	}
	return m.Sample
}

func parseFilter(s string) (ptmod.FilterModel, error) {
	switch strings.ToLower(s) {
	case "", "a1200":
		return ptmod.FilterA1200, nil
	case "a500":
		return ptmod.FilterA500, nil
	default:
		return 0, fault.New(fmt.Sprintf("unknown filter %q (expected a500 or a1200)", s))
	}
}

func parseTempoMode(s string) (ptmod.TempoMode, error) {
	switch strings.ToLower(s) {
	case "", "cia":
		return ptmod.TempoCIA, nil
	case "vblank":
		return ptmod.TempoVBlank, nil
	default:
		return 0, fault.New(fmt.Sprintf("unknown tempo mode %q (expected cia or vblank)", s))
	}
}

// NewEngine creates an engine with the file settings applied.
func (f *File) NewEngine() (*ptmod.Engine, error) {
	e, err := ptmod.NewEngine(f.EngineConfig())
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("create engine"))
	}
	if f.Mono() {
		e.SetStereoSeparation(0)
	}
	return e, nil
}
