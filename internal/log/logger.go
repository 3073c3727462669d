package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger for the given verbosity (0-3). Higher is
// more verbose: 0 logs errors only, 1 adds warnings, 2 adds info, 3
// adds debug output. The logger is handed to the session explicitly;
// there is no process-global level.
func New(verbosity int) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).Level(level(verbosity)).With().Timestamp().Logger()
	return &logger
}

func level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.ErrorLevel
	case verbosity == 1:
		return zerolog.WarnLevel
	case verbosity == 2:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
