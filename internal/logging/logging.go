// Package logging builds the zerolog loggers used by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. In development the output is the
// human readable console format.
func New(env, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewFile returns a logger appending to path, for the terminal UI which
// owns stdout and stderr. An empty path disables logging.
// Files always get JSON.
func NewFile(level, path string) (zerolog.Logger, func() error, error) {
	nop := func() error { return nil }
	if path == "" {
		return zerolog.Nop(), nop, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nop, fmt.Errorf("open log file: %w", err)
	}
	return New("", level, f), f.Close, nil
}
