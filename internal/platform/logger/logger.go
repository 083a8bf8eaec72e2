package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON to stdout so the surrounding platform
// can ship logs without extra parsing.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
