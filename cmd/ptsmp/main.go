package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/quasilyte/ptmod"
	"github.com/quasilyte/ptmod/internal/logging"
	"github.com/quasilyte/ptmod/modfile"
	"github.com/quasilyte/ptmod/smpfile"
)

// ptsmp moves the MOD samples to and from the sample files.
//
//	ptsmp export [-format wav|iff|raw] [-o dir] song.mod
//	ptsmp import [-slot n] [-keep-rate] [-o out.mod] song.mod sample.wav

const usage = `usage:
  ptsmp export [flags] song.mod
  ptsmp import [flags] song.mod sample-file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "export":
		err = exportMain(args)
	case "import":
		err = importMain(args)
	default:
		fmt.Fprintf(os.Stderr, "ptsmp: unknown command %q\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("ptsmp failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*slog.Logger, error) {
	return logging.New(os.Stderr, logging.Options{Level: "info", Debug: debug})
}

func exportMain(args []string) error {
	fs := flag.NewFlagSet("ptsmp export", flag.ExitOnError)
	formatName := fs.String("format", "wav", "sample file format: wav, iff or raw")
	dir := fs.String("o", ".", "output directory")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	format, err := smpfile.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	logger, err := newLogger(*debug)
	if err != nil {
		return err
	}
	return exportSamples(fs.Arg(0), *dir, format, logger)
}

func importMain(args []string) error {
	fs := flag.NewFlagSet("ptsmp import", flag.ExitOnError)
	slot := fs.Int("slot", 0, "sample slot 1..31 (defaults to the first empty one)")
	keepRate := fs.Bool("keep-rate", false, "do not halve the rate of the high rate samples")
	output := fs.String("o", "", "output MOD file (defaults to the input file)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		return err
	}
	opts := importOptions{
		song:     fs.Arg(0),
		sample:   fs.Arg(1),
		output:   *output,
		slot:     *slot,
		keepRate: *keepRate,
	}
	if opts.output == "" {
		opts.output = opts.song
	}
	return importSample(opts, logger)
}

func loadModule(filename string) (*modfile.Module, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("read MOD file"))
	}
	m, err := modfile.NewParser(modfile.ParserConfig{}).ParseFromBytes(data)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("parse MOD file"))
	}
	return m, nil
}

func exportSamples(song, dir string, format smpfile.Format, logger *slog.Logger) error {
	m, err := loadModule(song)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fault.Wrap(err, fmsg.With("create output directory"))
	}
	paths, err := smpfile.SaveAll(dir, m, format)
	for _, p := range paths {
		logger.Debug("sample saved", "path", p)
	}
	if err != nil {
		return err
	}
	logger.Info("done", "module", m.Name, "samples", len(paths), "format", format)
	return nil
}

type importOptions struct {
	song     string
	sample   string
	output   string
	slot     int
	keepRate bool
}

func importSample(opts importOptions, logger *slog.Logger) error {
	m, err := loadModule(opts.song)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.sample)
	if err != nil {
		return fault.Wrap(err, fmsg.With("read sample file"))
	}

	s, info, err := smpfile.Load(data, smpfile.LoadConfig{})
	if err == nil && !opts.keepRate && info.SampleRate > smpfile.DownsampleThreshold {
		s, info, err = smpfile.Load(data, smpfile.LoadConfig{Downsample: true})
	}
	if err != nil {
		return fault.Wrap(err, fmsg.With("load sample file"))
	}
	if s.Name == "" {
		name := filepath.Base(opts.sample)
		s.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if info.Truncated {
		logger.Warn("the sample is truncated", "length", len(s.Data))
	}

	slot := opts.slot
	if slot == 0 {
		slot = firstEmptySlot(m)
		if slot == 0 {
			return fault.New("there are no empty sample slots")
		}
	}

	engine, err := ptmod.NewEngine(ptmod.Config{})
	if err != nil {
		return err
	}
	if err := engine.LoadModule(m); err != nil {
		return fault.Wrap(err, fmsg.With("load module"))
	}
	if err := engine.ReplaceSample(slot, s); err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("replace sample %02d", slot)))
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create MOD file"))
	}
	if err := modfile.Encode(f, engine.ExportModule()); err != nil {
		f.Close()
		return fault.Wrap(err, fmsg.With("write MOD file"))
	}
	if err := f.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close MOD file"))
	}

	logger.Info("done",
		"slot", slot,
		"name", s.Name,
		"length", len(s.Data),
		"format", info.Format,
		"rate", info.SampleRate,
		"downsampled", info.Downsampled,
		"output", opts.output)
	return nil
}

func firstEmptySlot(m *modfile.Module) int {
	for i := range m.Samples {
		if len(m.Samples[i].Data) == 0 {
			return i + 1
		}
	}
	return 0
}
