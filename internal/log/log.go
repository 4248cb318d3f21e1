package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var (
	// L is the shared logger (use log.L.Info().Msg("hi"))
	L zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	L = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// SetOutput redirects the shared logger, keeping its level.
func SetOutput(w io.Writer) {
	L = L.Output(w)
}

// SetLevel sets the minimum level of the shared logger.
func SetLevel(level zerolog.Level) {
	L = L.Level(level)
}

// Debug starts a debug-level event on the shared logger.
func Debug() *zerolog.Event { return L.Debug() }

// Info starts an info-level event on the shared logger.
func Info() *zerolog.Event { return L.Info() }

// Warn starts a warn-level event on the shared logger.
func Warn() *zerolog.Event { return L.Warn() }

// Error starts an error-level event on the shared logger.
func Error() *zerolog.Event { return L.Error() }
