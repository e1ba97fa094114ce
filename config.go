package ptmod

import (
	"fmt"
)

// Config configures the Engine.
//
// Every zero value field is replaced by its default.
// Most of these settings can be changed later via the Engine methods:
//   - Engine.SetFilterModel()
//   - Engine.SetLEDFilter()
//   - Engine.SetStereoSeparation()
//   - Engine.SetTempoMode()
//   - Engine.SetLooping()
//
// The sample rate is fixed for the Engine lifetime.
type Config struct {
	// The sound device sample rate.
	// If you're using Ebitengine, it's the same value that
	// was used to create an audio context.
	//
	// A zero value will assume a sample rate of 44100.
	// Supported range is [8000, 192000].
	SampleRate uint

	// FilterModel selects the emulated Amiga output stage.
	// A zero value is FilterA1200.
	FilterModel FilterModel

	// LEDFilter is the initial state of the "power LED" low-pass filter.
	// The songs can toggle it with the E0x command.
	LEDFilter bool

	// StereoSeparation is a percentage in [0, 100].
	// 100 is the hard Amiga panning, 0 is a mono mix.
	//
	// A zero value will use the default separation of 20.
	// Use Engine.SetStereoSeparation(0) to get a mono output.
	StereoSeparation int

	// TempoMode selects the tick timer (CIA or VBlank).
	TempoMode TempoMode

	// Loop makes the song restart from the first order when it ends.
	// When looping is enabled, Read never returns EOF.
	Loop bool

	// Tempo is the initial BPM used by the CIA timer mode.
	// A zero value will use 125.
	Tempo uint

	// Speed is the initial number of ticks per row.
	// A zero value will use 6.
	Speed uint

	// Amplification scales the final mix.
	// A zero value will use 1.0.
	Amplification float64
}

// FilterModel is an Amiga model which output filters are emulated.
type FilterModel uint8

const (
	// FilterA1200 has a ~34kHz low-pass and a 5.2Hz high-pass filters.
	FilterA1200 FilterModel = iota

	// FilterA500 has a ~4.4kHz low-pass and a 5.2Hz high-pass filters.
	FilterA500
)

func (m FilterModel) String() string {
	switch m {
	case FilterA1200:
		return "A1200"
	case FilterA500:
		return "A500"
	default:
		return "unknown"
	}
}

// TempoMode selects the source of the replayer ticks.
type TempoMode uint8

const (
	// TempoCIA derives the tick rate from the BPM (Fxx >= 0x20).
	TempoCIA TempoMode = iota

	// TempoVBlank ticks at the PAL vertical blank rate.
	// All non-zero Fxx values change the speed in this mode.
	TempoVBlank
)

func (m TempoMode) String() string {
	switch m {
	case TempoCIA:
		return "CIA"
	case TempoVBlank:
		return "VBlank"
	default:
		return "unknown"
	}
}

// PlayMode tells how the order list is used during the playback.
type PlayMode uint8

const (
	// PlaySong follows the order list.
	PlaySong PlayMode = iota

	// PlayPattern repeats a single pattern.
	PlayPattern
)

func (m PlayMode) String() string {
	switch m {
	case PlaySong:
		return "song"
	case PlayPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

const (
	defaultSampleRate       = 44100
	defaultStereoSeparation = 20
	defaultTempo            = 125
	defaultSpeed            = 6

	minSampleRate = 8000
	maxSampleRate = 192000

	minTempo = 32
	maxTempo = 255
	maxSpeed = 31
)

func applyConfigDefaults(config *Config) {
	if config.SampleRate == 0 {
		config.SampleRate = defaultSampleRate
	}
	if config.StereoSeparation == 0 {
		config.StereoSeparation = defaultStereoSeparation
	}
	if config.Tempo == 0 {
		config.Tempo = defaultTempo
	}
	if config.Speed == 0 {
		config.Speed = defaultSpeed
	}
	if config.Amplification == 0 {
		config.Amplification = 1
	}
}

func validateConfig(config *Config) error {
	if config.SampleRate < minSampleRate || config.SampleRate > maxSampleRate {
		return fmt.Errorf("unsupported sample rate %d (expected [%d, %d])", config.SampleRate, minSampleRate, maxSampleRate)
	}
	if config.FilterModel > FilterA500 {
		return fmt.Errorf("unknown filter model %d", config.FilterModel)
	}
	if config.TempoMode > TempoVBlank {
		return fmt.Errorf("unknown tempo mode %d", config.TempoMode)
	}
	if config.StereoSeparation < 0 || config.StereoSeparation > 100 {
		return fmt.Errorf("stereo separation %d is out of [0, 100] range", config.StereoSeparation)
	}
	if config.Tempo < minTempo || config.Tempo > maxTempo {
		return fmt.Errorf("tempo %d is out of [%d, %d] range", config.Tempo, minTempo, maxTempo)
	}
	if config.Speed > maxSpeed {
		return fmt.Errorf("speed %d is out of [1, %d] range", config.Speed, maxSpeed)
	}
	if config.Amplification < 0 {
		return fmt.Errorf("negative amplification: %g", config.Amplification)
	}
	return nil
}
