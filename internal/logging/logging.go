package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Logs go to stderr so plan
// documents written to stdout stay clean.
func Setup(environment string, debug bool) zerolog.Logger {
	return SetupWithWriter(environment, debug, os.Stderr)
}

// SetupWithWriter configures zerolog with a human-readable writer.
func SetupWithWriter(environment string, debug bool, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" || debug {
		level = zerolog.DebugLevel
	}
	if environment == "test" {
		level = zerolog.WarnLevel
	}

	consoleWriter := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}

	logger := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger
}
