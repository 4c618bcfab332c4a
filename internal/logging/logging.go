// Package logging builds process logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Formats of log output.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// ErrFormat - unknown log format.
var ErrFormat = errors.New("logging.New: unknown format")

// New - creates structured logger writing to w.
// JSON lines by default, human-readable console output for FormatPretty.
// Every record carries timestamp and service name.
func New(service, level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging.New: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch format {
	case FormatJSON, "":
	case FormatPretty:
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	default:
		return zerolog.Nop(), fmt.Errorf("%w %q", ErrFormat, format)
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger(), nil
}
