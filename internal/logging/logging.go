// Package logging configures the process-wide zerolog logger. Diagnostics go
// to stderr so they never mix with command output on stdout.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls logger setup.
type Options struct {
	Level   string    // trace, debug, info, warn, error; empty means warn
	Verbose bool      // forces debug
	Out     io.Writer // defaults to os.Stderr
	NoColor bool
}

func init() {
	// Quiet until Init runs, so library use and tests stay silent.
	log.Logger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
}

// Init replaces the global logger with a console logger at the requested level.
func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: out, NoColor: opts.NoColor, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(level)
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// fall back to warn.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}
