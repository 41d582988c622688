// Package logging builds the root zerolog logger shared by all components.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root logger. Format "console" enables the human-readable
// console writer; anything else emits JSON. Unknown levels fall back to info.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
