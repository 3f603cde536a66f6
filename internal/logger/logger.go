// Package logger provides a thin wrapper around zerolog.Logger for the
// diagnostic output of builder.
//
// Diagnostics go to stderr in a human-readable console format and are
// silent by default; the pipelines and their output are written to stdout
// separately and never pass through the logger.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a console logger writing to w at the given level name
// ("debug", "info", "warn", ...). An empty level means warn.
func New(w io.Writer, level string) (*Logger, error) {
	lvl := zerolog.WarnLevel
	if level = strings.TrimSpace(level); level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, eris.Wrapf(err, "invalid log level %q", level)
		}
		lvl = parsed
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return &Logger{l}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
