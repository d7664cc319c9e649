// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a timestamped logger writing JSON to stdout, or a console
// rendering when format is "console". A non-empty file additionally receives
// JSON lines through a size-rotated log file. Unknown levels mean info.
func New(level, format, file string) zerolog.Logger {
	return NewTo(os.Stdout, level, format, file)
}

// NewTo is New writing to w instead of stdout.
func NewTo(w io.Writer, level, format, file string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	if file != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		})
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
