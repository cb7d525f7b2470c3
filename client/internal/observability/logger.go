// Package observability builds the structured loggers used across the client.
package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger on stderr tagged with component. Unknown
// levels fall back to info.
func NewLogger(level, component string) zerolog.Logger {
	return newLogger(os.Stderr, level, component)
}

// NewConsoleLogger is NewLogger with human readable output for interactive
// commands.
func NewConsoleLogger(level, component string) zerolog.Logger {
	return newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level, component)
}

func newLogger(w io.Writer, level, component string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
