package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Debug switches the level and
// enables the human-readable console writer.
func Init(serviceName string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	var logger zerolog.Logger
	if debug {
		level = zerolog.DebugLevel
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	log.Logger = logger.Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
