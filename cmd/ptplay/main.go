package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/internal/logging"
	"github.com/quasilyte/ptmod/internal/midijam"
	"github.com/quasilyte/ptmod/internal/ptconfig"
	"github.com/quasilyte/ptmod/modfile"
)

// This CLI tool plays the specified MOD track using Ebitengine audio player.
//
// Controls:
//
//	SPACE       play/stop
//	P           play the current pattern
//	R           restart
//	LEFT/RIGHT  previous/next order
//	UP/DOWN     move 4 rows
//	F           toggle the LED filter
//	M           switch the filter model
//	1-4         mute channels
//	+/-         change the tempo
//	E           toggle the MIDI note recording

func main() {
	configPath := flag.String("config", "", "player YAML config file")
	midiDevice := flag.String("midi", "", "MIDI input name prefix for the note jamming")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ptplay [flags] path/to/music.mod\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Args()[0], *configPath, *midiDevice, *debug); err != nil {
		slog.Error("ptplay failed", "err", err)
		os.Exit(1)
	}
}

func run(filename, configPath, midiDevice string, debug bool) error {
	config, err := ptconfig.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, logging.Options{Level: config.LogLevel, Debug: debug})
	if err != nil {
		return err
	}

	m, err := loadModule(filename)
	if err != nil {
		return err
	}
	logger.Info("module loaded", "file", filename, "name", m.Name, "format", m.Format, "orders", len(m.Orders))

	engine, err := config.NewEngine()
	if err != nil {
		return err
	}
	if err := engine.LoadModule(m); err != nil {
		return fault.Wrap(err, fmsg.With("load module"))
	}
	events := newEventQueue(16)
	engine.SetEventHandler(events.push)

	g := &game{
		engine:   engine,
		logger:   logger,
		events:   events,
		filename: filename,
		info:     engine.SongInfo(),
	}

	if midiDevice == "" {
		midiDevice = config.MIDI.Device
	}
	if midiDevice != "" {
		input, err := midijam.Open(engine, midijam.Config{
			Device:  midiDevice,
			Channel: config.MIDI.Channel,
			Sample:  config.MIDI.JamSample(),
			Logger:  logger,
		})
		if err != nil {
			// The player is still usable without the MIDI input.
			logger.Warn("MIDI jam is disabled", "err", err)
		} else {
			defer input.Close()
			g.midi = input
		}
	}

	// Create a sound player using the Ebitengine audio context.
	// The engine renders silence while stopped, so the player runs all the time.
	info := engine.GetInfo()
	audioContext := audio.NewContext(int(info.SampleRate))
	player, err := audioContext.NewPlayer(engine)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create audio player"))
	}
	player.Play()

	ebiten.SetWindowTitle("ptplay: " + filename)
	if err := ebiten.RunGame(g); err != nil {
		return fault.Wrap(err, fmsg.With("run game"))
	}
	return nil
}

func loadModule(filename string) (*modfile.Module, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read MOD file"))
	}
	p := modfile.NewParser(modfile.ParserConfig{})
	m, err := p.ParseFromBytes(data)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("parse MOD file"))
	}
	return m, nil
}

type game struct {
	engine *ptmod.Engine
	logger *slog.Logger
	events *eventQueue

	// midi is nil if the MIDI jam is disabled.
	midi      *midijam.Input
	recording bool

	filename string
	info     ptmod.SongInfo
}

var muteKeys = [ptmod.NumChannels]ebiten.Key{
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyDigit4,
}

func (g *game) Update() error {
	g.events.drain(g.logger)
	s := g.engine.Snapshot()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if s.Playing {
			g.engine.Stop()
		} else {
			g.engine.Play()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.check(g.engine.PlayPattern(s.Pattern, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.engine.Restart()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.check(g.engine.SetPosition(max(s.Order-1, 0), 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.check(g.engine.SetPosition(min(s.Order+1, s.SongLength-1), 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.check(g.engine.SetPosition(s.Order, max(s.Row-4, 0)))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.check(g.engine.SetPosition(s.Order, min(s.Row+4, ptmod.NumRows-1)))
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.engine.SetLEDFilter(!s.LEDFilter)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.toggleRecording()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		if s.FilterModel == ptmod.FilterA500 {
			g.engine.SetFilterModel(ptmod.FilterA1200)
		} else {
			g.engine.SetFilterModel(ptmod.FilterA500)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		g.setTempo(s.Tempo + 5)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		g.setTempo(s.Tempo - 5)
	}

	for i, k := range muteKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.check(g.engine.SetChannelMuted(i, !s.Channels[i].Muted))
		}
	}

	return nil
}

func (g *game) toggleRecording() {
	g.recording = !g.recording
	if g.midi != nil {
		g.midi.SetRecording(g.recording)
	}
}

func (g *game) modeLine() string {
	if g.recording {
		return "MIDI: REC"
	}
	return "MIDI: jam"
}

func (g *game) setTempo(bpm int) {
	g.check(g.engine.SetTempo(min(max(bpm, 32), 255)))
}

func (g *game) check(err error) {
	if err != nil {
		g.logger.Warn("control operation failed", "err", err)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	s := g.engine.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", g.info.Name, g.filename)
	switch {
	case s.Ended:
		b.WriteString("Song is over... press SPACE\n")
	case !s.Playing:
		b.WriteString("Stopped... press SPACE\n")
	default:
		fmt.Fprintf(&b, "Playing (%s mode)\n", s.PlayMode)
	}
	fmt.Fprintf(&b, "order %03d/%03d  pattern %02d  row %02d\n", s.Order, s.SongLength, s.Pattern, s.Row)
	fmt.Fprintf(&b, "speed %d  tempo %d (%s)\n", s.Speed, s.Tempo, s.TempoMode)
	led := "off"
	if s.LEDFilter {
		led = "on"
	}
	fmt.Fprintf(&b, "filter %s  LED %s  separation %d%%\n", s.FilterModel, led, s.StereoSeparation)
	fmt.Fprintf(&b, "%s\n\n", g.modeLine())
	for i, ch := range s.Channels {
		state := ""
		if ch.Muted {
			state = " (muted)"
		}
		fmt.Fprintf(&b, "%d: %s %02X vol %02d %s%s\n",
			i+1, ptmod.NoteName(ch.Note), ch.Sample, ch.Volume, volumeBar(ch), state)
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func volumeBar(ch ptmod.ChannelSnapshot) string {
	if !ch.Active || ch.Muted {
		return ""
	}
	return strings.Repeat("#", ch.Volume/4)
}

func (g *game) Layout(_, _ int) (int, int) {
	return 640, 480
}
