// Package logging builds the slog loggers used by the serverboard binary.
//
// Two formats are supported: "json" (one JSON object per line, the default)
// and "console", which renders the same records through zerolog's
// ConsoleWriter for humans at a terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a [slog.Level].
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
}

// New creates a logger writing to w in the given format at the given level.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "", FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case FormatConsole:
		return slog.New(slog.NewJSONHandler(consoleWriter(w), &slog.HandlerOptions{
			Level:       lvl,
			ReplaceAttr: zerologKeys,
		})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: json, console)", format)
	}
}

// consoleWriter decodes each JSON record and pretty-prints it.
func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !IsTerminal(w),
		TimeFormat: "15:04:05",
	}
}

// zerologKeys renames slog's top-level keys to the ones ConsoleWriter reads.
func zerologKeys(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = zerolog.MessageFieldName
	case slog.LevelKey:
		a.Key = zerolog.LevelFieldName
		a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
	case slog.TimeKey:
		a.Key = zerolog.TimestampFieldName
	}
	return a
}
