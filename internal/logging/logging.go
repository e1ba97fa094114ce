// Package logging builds the command loggers.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// Options configure the logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	// An empty level means "info".
	Level string

	// Debug forces the debug level and adds the source locations.
	Debug bool
}

// New creates a text logger and makes it the default slog logger,
// so the stdlib log package output goes through the same handler.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.Debug,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fault.Wrap(err, fmsg.With("parse log level"))
	}
	return level, nil
}
