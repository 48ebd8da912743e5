package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// SetupLogging installs a tint handler on stderr as the default slog logger.
// Level comes from LOG_LEVEL unless verbose forces debug. Results are written to
// stdout separately, so logs never mix into JSON output.
func SetupLogging(verbose bool) *slog.Logger {
	level := LevelFromEnv()
	if verbose {
		level = slog.LevelDebug
	}
	logger := NewLogger(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}

// NewLogger builds a tint logger writing to w. Colour is disabled unless w is a
// terminal-backed *os.File.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(w),
	}))
}

// LevelFromEnv maps LOG_LEVEL (debug, info, warn, error) to a slog level.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
