// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup("info")                        // level from config
//	logging.SetupWithLevel(slog.LevelDebug)      // explicit level
//	logger := logging.New(os.Stdout, "warn")     // standalone logger
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a colored default logger at the named level: debug, info,
// warn or error. Unknown names fall back to info.
func Setup(level string) {
	SetupWithLevel(ParseLevel(level))
}

// SetupWithLevel installs a colored default logger at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(handler(os.Stderr, level)))
}

// New returns a colored logger writing to w without touching the default.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(handler(w, ParseLevel(level)))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}
