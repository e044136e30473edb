package app

import (
	"io"
	"log/slog"
)

// Log output formats accepted by the CLI and the server config file.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// newLogger builds an isolated slog.Logger; it never touches the process
// default. Unknown level names fall back to info.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
