// Package logging wires the diagnostic logger used across runtest.
//
// Diagnostics are structured (logiface, written through zerolog), and are
// kept apart from the test transcript, which is plain text owned by the
// report package.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger is the generified logger type accepted by the other packages.
type Logger = logiface.Logger[logiface.Event]

// DefaultLevel is used when no level is configured.
const DefaultLevel = logiface.LevelWarning

var levelNames = map[string]logiface.Level{
	`disabled`: logiface.LevelDisabled,
	`emerg`:    logiface.LevelEmergency,
	`alert`:    logiface.LevelAlert,
	`crit`:     logiface.LevelCritical,
	`err`:      logiface.LevelError,
	`error`:    logiface.LevelError,
	`warning`:  logiface.LevelWarning,
	`warn`:     logiface.LevelWarning,
	`notice`:   logiface.LevelNotice,
	`info`:     logiface.LevelInformational,
	`debug`:    logiface.LevelDebug,
	`trace`:    logiface.LevelTrace,
}

// ParseLevel maps a level keyword (as printed by logiface.Level.String,
// plus a few common aliases) to a logiface.Level.
func ParseLevel(s string) (logiface.Level, error) {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level, nil
	}
	return logiface.LevelDisabled, fmt.Errorf("logging: unknown level %q", s)
}

// New returns a logger writing human-readable lines to w, which is
// colourised only when w is a terminal.
func New(w io.Writer, level logiface.Level) *Logger {
	return newLogger(consoleWriter(w), level)
}

// NewJSON returns a logger writing one JSON object per line to w.
func NewJSON(w io.Writer, level logiface.Level) *Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level logiface.Level) *Logger {
	z := zerolog.New(w).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()
	return L.New(
		L.WithZerolog(z),
		L.WithLevel(level),
	).Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.TimeOnly,
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		cw.Out = colorable.NewColorable(f)
		cw.NoColor = false
	}
	return cw
}
