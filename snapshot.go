package ptmod

// Snapshot is a consistent view of the engine state.
// It's intended for the UI: position displays, VU meters, scopes.
type Snapshot struct {
	Playing  bool
	Ended    bool
	PlayMode PlayMode

	Order   int
	Pattern int
	Row     int
	Tick    int

	Speed      int
	Tempo      int
	TempoMode  TempoMode
	SongLength int
	Looping    bool

	FilterModel      FilterModel
	LEDFilter        bool
	StereoSeparation int

	Modified bool

	// Time is the rendered stream duration, in seconds.
	Time float64

	Channels [NumChannels]ChannelSnapshot
}

type ChannelSnapshot struct {
	// Sample is a sample number (1..31) or 0.
	Sample int

	// Note is the last triggered note (1..36) or 0.
	Note int

	// Period and Volume are the values Paula uses right now,
	// with vibrato, arpeggio and tremolo applied.
	Period int
	Volume int

	// Position is the current byte offset inside the sample.
	Position int

	Active bool
	Muted  bool
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Playing:          e.playing,
		Ended:            e.ended,
		PlayMode:         e.playMode,
		Order:            e.order,
		Pattern:          e.pattern,
		Row:              e.row,
		Tick:             e.tick,
		Speed:            e.speed,
		Tempo:            e.tempo,
		TempoMode:        e.settings.tempoMode,
		SongLength:       e.module.songLength,
		Looping:          e.settings.loop,
		FilterModel:      e.mixer.model,
		LEDFilter:        e.mixer.led,
		StereoSeparation: e.mixer.separation,
		Modified:         e.modified,
		Time:             float64(e.framePos) / float64(e.config.SampleRate),
	}
	for i := range e.voices {
		v := &e.voices[i]
		s.Channels[i] = ChannelSnapshot{
			Sample:   int(v.sample),
			Note:     int(v.note),
			Period:   v.outPeriod,
			Volume:   v.paula.volume,
			Position: v.paula.position(),
			Active:   v.paula.active,
			Muted:    v.muted,
		}
	}
	return s
}

// SongInfo describes the loaded song.
type SongInfo struct {
	Name        string
	SongLength  int
	NumPatterns int
	Orders      []int
	SampleNames [NumSamples]string
}

// SongInfo returns the loaded song description.
func (e *Engine) SongInfo() SongInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.module
	info := SongInfo{
		Name:        m.name,
		SongLength:  m.songLength,
		NumPatterns: m.numPatterns,
		Orders:      make([]int, m.songLength),
	}
	for i := range info.Orders {
		info.Orders[i] = int(m.orders[i])
	}
	for i := range info.SampleNames {
		info.SampleNames[i] = m.samples[i+1].name
	}
	return info
}
