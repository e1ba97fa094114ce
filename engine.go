package ptmod

import (
	"errors"
	"io"
	"sync"

	"github.com/quasilyte/ptmod/modfile"
)

// ErrOutOfRange is returned by the load and edit operations
// when an argument or a module value does not fit the replayer limits.
var ErrOutOfRange = errors.New("value out of range")

// Engine is a ProTracker module replayer.
//
// The Read() method produces 16-bit little endian stereo PCM bytes; this is what ebiten/audio
// and oto packages expect. Use Engine as an io.Reader argument for audio.NewPlayer().
//
// All Engine methods are safe for concurrent use.
// The audio thread holds the engine lock for the whole Read/Fill call,
// control operations wait for the current buffer to be rendered.
// Use Update to apply several changes atomically.
type Engine struct {
	mu sync.Mutex

	module *module
	voices [NumChannels]voice

	config   Config
	settings engineSettings
	mixer    mixer

	playing  bool
	ended    bool
	playMode PlayMode

	// Playback cursor.
	order      int
	pattern    int
	row        int
	tick       int
	speed      int
	tempo      int
	rowPending bool

	// Row jumps requested by the current row.
	posJump     bool
	jumpOrder   int // -1 means "next order"
	breakRow    int
	loopJump    bool
	loopJumpRow int

	patternDelay  int
	stopRequested bool

	framesPerTick uint64 // 32.32 fixed-point
	frameFrac     uint64
	framesLeft    int
	framePos      uint64 // Used to report the current pos via Seek()

	// A bit per row, for every order; used to detect the song end.
	visited [MaxOrders]uint64

	modified bool

	buf [readChunkFrames * 2]int16
}

type engineSettings struct {
	loop         bool
	tempoMode    TempoMode
	eventHandler func(e Event)
}

const readChunkFrames = 1024

// NewEngine allocates a stopped engine with an empty song loaded.
// Use LoadModule to assign a module to it.
func NewEngine(config Config) (*Engine, error) {
	applyConfigDefaults(&config)
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	e := &Engine{
		config: config,
		module: &module{songLength: 1, numPatterns: 1},
		settings: engineSettings{
			loop:      config.Loop,
			tempoMode: config.TempoMode,
		},
	}
	e.mixer.init(&config)
	for i := range e.voices {
		e.voices[i].id = i
	}
	e.speed = int(config.Speed)
	e.setTempo(int(config.Tempo))
	e.moveCursor(0, 0)

	return e, nil
}

// SetEventHandler installs an event listener to the engine.
//
// f is called on every engine event.
//
// Events are produced while the audio is being rendered,
// so f is executed with the engine lock held:
// it must not call any of the Engine methods.
func (e *Engine) SetEventHandler(f func(e Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.eventHandler = f
}

// LoadModule assigns a new module to this engine.
//
// The module is validated and compiled; the engine keeps
// its own copy of the data, so m can be modified or discarded afterwards.
// The engine is stopped at the first order.
func (e *Engine) LoadModule(m *modfile.Module) error {
	compiled, err := compileModule(m)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.module = compiled
	e.stop()
	e.ended = false
	e.modified = false
	e.framePos = 0
	e.playMode = PlaySong
	e.visited = [MaxOrders]uint64{}
	e.speed = int(e.config.Speed)
	e.setTempo(int(e.config.Tempo))
	e.moveCursor(0, 0)

	return nil
}

// Seek partially implements io.Seeker.
//
// You can use it for two things:
//  1. (0, SeekStart) to restart the song
//  2. (0, SeekCurrent) to get the byte pos inside the stream
func (e *Engine) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		if offset == 0 {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.framePos = 0
			e.start(0, 0, PlaySong)
			return 0, nil
		}

	case io.SeekCurrent:
		if offset == 0 {
			e.mu.Lock()
			defer e.mu.Unlock()
			return int64(e.framePos) * 4, nil
		}
	}

	return 0, errors.New("unsupported Seek call")
}

// Read puts next PCM bytes into provided slice.
//
// Every frame takes 4 bytes: 16-bit little endian left and right samples.
// The tail of b that can't fit a whole frame is left untouched.
//
// When the song ends (and looping is disabled), io.EOF error is returned.
func (e *Engine) Read(b []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	written := 0
	for len(b) >= 4 {
		frames := clampMax(len(b)/4, readChunkFrames)
		buf := e.buf[:frames*2]
		n, eof := e.render(buf)
		for i := 0; i < n; i++ {
			putPCM(b[i*4:], buf[i*2], buf[i*2+1])
		}
		written += n * 4
		b = b[n*4:]
		if eof {
			return written, io.EOF
		}
	}
	return written, nil
}

// Fill renders len(out)/2 interleaved stereo frames.
//
// It returns the number of rendered frames.
// When the song ends, the remaining frames are zeroed and io.EOF is returned.
func (e *Engine) Fill(out []int16) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out = out[:len(out)/2*2]
	n, eof := e.render(out)
	if eof {
		clear(out[n*2:])
		return n, io.EOF
	}
	return n, nil
}

// render fills out with the stereo frames, running the sequencer
// at the tick boundaries.
func (e *Engine) render(out []int16) (frames int, eof bool) {
	total := len(out) / 2
	for frames < total {
		if e.ended {
			return frames, true
		}
		n := total - frames
		if e.playing {
			if e.framesLeft == 0 {
				if !e.nextTick() {
					e.finishSong()
					continue
				}
				e.scheduleTick()
			}
			n = clampMax(n, e.framesLeft)
			e.framesLeft -= n
		}
		e.mix(out[frames*2 : (frames+n)*2])
		frames += n
		e.framePos += uint64(n)
	}
	return frames, false
}

func (e *Engine) mix(out []int16) {
	// This function dominates the rendering execution time.
	// Keep it free of allocations and calls through interfaces.
	samples := &e.module.samples
	for i := 0; i < len(out); i += 2 {
		var l, r float64
		for j := range e.voices {
			v := &e.voices[j]
			p := &v.paula
			if !p.active {
				continue
			}
			s := p.fetch(samples) * float64(p.volume)
			p.advance()
			if v.muted {
				continue
			}
			if j == 0 || j == 3 {
				l += s
			} else {
				r += s
			}
		}
		l, r = e.mixer.process(l, r)
		out[i] = toInt16(l)
		out[i+1] = toInt16(r)
	}
}

func (e *Engine) scheduleTick() {
	total := e.framesPerTick + e.frameFrac
	e.framesLeft = clampMin(int(total>>32), 1)
	e.frameFrac = total & 0xFFFFFFFF
}

func (e *Engine) setTempo(bpm int) {
	e.tempo = bpm
	e.framesPerTick = calcFramesPerTick(e.config.SampleRate, e.settings.tempoMode, bpm)
}

func (e *Engine) emit(ev Event) {
	if e.settings.eventHandler == nil {
		return
	}
	ev.Time = float64(e.framePos) / float64(e.config.SampleRate)
	e.settings.eventHandler(ev)
}

func (e *Engine) stopVoices() {
	for i := range e.voices {
		e.voices[i].reset()
	}
}

// start begins the playback from the given position.
func (e *Engine) start(order, row int, mode PlayMode) {
	e.stopVoices()
	e.playMode = mode
	e.playing = true
	e.ended = false
	e.patternDelay = 0
	e.stopRequested = false
	e.speed = int(e.config.Speed)
	e.setTempo(int(e.config.Tempo))
	e.framesLeft = 0
	e.frameFrac = 0
	e.moveCursor(order, row)
}

func (e *Engine) stop() {
	e.playing = false
	e.stopVoices()
}

func (e *Engine) finishSong() {
	e.stop()
	if !e.settings.loop {
		e.ended = true
	}
	e.emit(Event{Kind: EventSongEnd, Channel: -1})
}

// moveCursor makes (order, row) the next row to be played.
// The song end detection starts over from the new position.
func (e *Engine) moveCursor(order, row int) {
	e.visited = [MaxOrders]uint64{}
	e.order = order
	e.row = row
	if e.playMode == PlaySong {
		e.pattern = int(e.module.orders[order])
	}
	e.tick = e.speed - 1
	e.rowPending = true
	e.patternDelay = 0
	e.clearJumps()
}

func (e *Engine) clearJumps() {
	e.posJump = false
	e.jumpOrder = -1
	e.breakRow = 0
	e.loopJump = false
	e.loopJumpRow = 0
}
