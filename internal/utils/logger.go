package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the agent logger. JSON lines go to stdout and, when a file
// is configured, to a size-rotated log file.
func NewLogger(config *Config) zerolog.Logger {
	return newLogger(config, os.Stdout)
}

func newLogger(config *Config, stdout io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{stdout}
	if config.Logging.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.Logging.File,
			MaxSize:    config.Logging.MaxSizeMB,
			MaxBackups: config.Logging.MaxBackups,
			MaxAge:     config.Logging.MaxAgeDays,
			Compress:   true,
		})
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("app", "safezone-agent").
		Logger()
}
