package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/internal/logging"
	"github.com/quasilyte/ptmod/internal/midijam"
	"github.com/quasilyte/ptmod/internal/ptconfig"
	"github.com/quasilyte/ptmod/modfile"
)

// ptterm is a terminal MOD player.
// The logs go to a file, the terminal belongs to the UI.

func main() {
	configPath := flag.String("config", "", "player YAML config file")
	logPath := flag.String("log", "ptterm.log", "log file path")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ptterm [flags] path/to/music.mod\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "ptterm: stdout is not a terminal, use ptrender to render the song into a file")
		os.Exit(2)
	}

	if err := run(flag.Args()[0], *configPath, *logPath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "ptterm: %v\n", err)
		os.Exit(1)
	}
}

func run(filename, configPath, logPath string, debug bool) error {
	config, err := ptconfig.Load(configPath)
	if err != nil {
		return err
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create log file"))
	}
	defer logFile.Close()
	logger, err := logging.New(logFile, logging.Options{Level: config.LogLevel, Debug: debug})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fault.Wrap(err, fmsg.With("read MOD file"))
	}
	m, err := modfile.NewParser(modfile.ParserConfig{}).ParseFromBytes(data)
	if err != nil {
		return fault.Wrap(err, fmsg.With("parse MOD file"))
	}

	engine, err := config.NewEngine()
	if err != nil {
		return err
	}
	if err := engine.LoadModule(m); err != nil {
		return fault.Wrap(err, fmsg.With("load module"))
	}
	logger.Info("module loaded", "file", filename, "name", m.Name, "format", m.Format)

	if config.MIDI.Device != "" {
		input, err := midijam.Open(engine, midijam.Config{
			Device:  config.MIDI.Device,
			Channel: config.MIDI.Channel,
			Sample:  config.MIDI.JamSample(),
			Logger:  logger,
		})
		if err != nil {
			logger.Warn("MIDI jam is disabled", "err", err)
		} else {
			defer input.Close()
		}
	}

	player, err := startAudio(engine)
	if err != nil {
		return err
	}
	defer player.Pause()

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		logger.Debug("can't get the terminal size", "err", err)
		width = 80
	}

	engine.Play()
	program := tea.NewProgram(newModel(engine, logger, filename, width), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fault.Wrap(err, fmsg.With("run UI"))
	}
	return nil
}

func startAudio(engine *ptmod.Engine) (*oto.Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(engine.GetInfo().SampleRate),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("create audio context"))
	}
	<-ready

	player := ctx.NewPlayer(engine)
	player.Play()
	slog.Debug("audio started", "rate", op.SampleRate, "buffer", player.BufferedSize())
	return player, nil
}
