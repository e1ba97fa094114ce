package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/internal/logging"
	"github.com/quasilyte/ptmod/internal/ptconfig"
	"github.com/quasilyte/ptmod/modfile"
)

// ptrender renders a MOD file into a 16-bit stereo WAV file.
// The rendering stops at the song end (or an F00 command).

func main() {
	configPath := flag.String("config", "", "player YAML config file")
	output := flag.String("o", "", "output WAV file (defaults to the input name with .wav extension)")
	rate := flag.Uint("rate", 0, "output sample rate (overrides the config)")
	maxDuration := flag.Duration("max", 20*time.Minute, "max output duration")
	midiOutput := flag.String("midi-out", "", "also write the played notes into a MIDI file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ptrender [flags] path/to/music.mod\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := renderOptions{
		input:       flag.Args()[0],
		output:      *output,
		rate:        *rate,
		maxDuration: *maxDuration,
		midiOutput:  *midiOutput,
	}
	if opts.output == "" {
		opts.output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + ".wav"
	}

	config, err := ptconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptrender: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, logging.Options{Level: config.LogLevel, Debug: *debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptrender: %v\n", err)
		os.Exit(1)
	}

	if err := run(config, opts, logger); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

type renderOptions struct {
	input       string
	output      string
	rate        uint
	maxDuration time.Duration
	midiOutput  string
}

func run(config *ptconfig.File, opts renderOptions, logger *slog.Logger) error {
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fault.Wrap(err, fmsg.With("read MOD file"))
	}
	m, err := modfile.NewParser(modfile.ParserConfig{}).ParseFromBytes(data)
	if err != nil {
		return fault.Wrap(err, fmsg.With("parse MOD file"))
	}

	if opts.rate != 0 {
		config.SampleRate = opts.rate
	}
	// The render always ends with the song.
	config.Loop = false
	engine, err := config.NewEngine()
	if err != nil {
		return err
	}
	if err := engine.LoadModule(m); err != nil {
		return fault.Wrap(err, fmsg.With("load module"))
	}

	var notes *noteRecorder
	if opts.midiOutput != "" {
		notes = &noteRecorder{}
		engine.SetEventHandler(notes.handleEvent)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create output file"))
	}
	defer f.Close()

	info := engine.GetInfo()
	maxFrames := int(opts.maxDuration.Seconds() * float64(info.SampleRate))
	logger.Debug("rendering", "input", opts.input, "rate", info.SampleRate, "max_frames", maxFrames)

	start := time.Now()
	frames, err := renderWAV(f, engine, maxFrames)
	if err != nil {
		return err
	}
	if notes != nil {
		if err := writeMIDIFile(opts.midiOutput, notes); err != nil {
			return err
		}
		logger.Info("MIDI file written", "output", opts.midiOutput, "notes", len(notes.notes))
	}
	logger.Info("done",
		"output", opts.output,
		"duration", time.Duration(float64(frames)/float64(info.SampleRate)*float64(time.Second)).Round(time.Millisecond),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

const renderChunkFrames = 4096

// renderWAV plays the song from the start and writes it to w.
// It returns the number of written frames.
func renderWAV(w io.WriteSeeker, engine *ptmod.Engine, maxFrames int) (int, error) {
	sampleRate := int(engine.GetInfo().SampleRate)
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)

	pcm := make([]int16, renderChunkFrames*2)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(pcm)),
		SourceBitDepth: 16,
	}

	engine.Restart()
	total := 0
	for total < maxFrames {
		chunk := pcm[:min(renderChunkFrames, maxFrames-total)*2]
		n, err := engine.Fill(chunk)
		for i, v := range chunk[:n*2] {
			buf.Data[i] = int(v)
		}
		buf.Data = buf.Data[:n*2]
		if n != 0 {
			if err := enc.Write(buf); err != nil {
				return total, fault.Wrap(err, fmsg.With("write WAV data"))
			}
		}
		buf.Data = buf.Data[:cap(buf.Data)]
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return total, fault.Wrap(err, fmsg.With("finish WAV file"))
	}
	return total, nil
}

func writeMIDIFile(path string, notes *noteRecorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create MIDI file"))
	}
	defer f.Close()
	return notes.writeTo(f)
}
