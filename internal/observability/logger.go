package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger writes JSON lines to w, or stderr when w is nil.
func NewLogger(level string, w io.Writer) *zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &logger
}

// NewConsoleLogger is NewLogger with human readable output.
func NewConsoleLogger(level string, w io.Writer) *zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000", NoColor: true}
	logger := zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &logger
}

// Nop discards everything.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
