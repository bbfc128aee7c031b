// Package logging configures the zerolog global logger used for diagnostics.
// Scan results never go through it.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = zerolog.New(consoleWriter(os.Stderr, true)).With().Timestamp().Logger()
}

// SetupLogger configures the global logger. Warnings and errors are always
// shown; verbose adds debug output with caller information.
func SetupLogger(verbose bool, out io.Writer, noColor bool) {
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(consoleWriter(out, noColor)).With().Timestamp()
	if verbose {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()

	log.Debug().Str("level", level.String()).Msg("Logger initialized")
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}
}

// GetLogger returns a logger tagged with the given component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
