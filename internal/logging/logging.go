// Package logging provides structured logging for studyloop.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level represents logging levels.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level string. Unknown strings map to InfoLevel.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format string // "json" or "text"
	Output string // "stdout", "stderr", or file path
}

var (
	mu       sync.Mutex
	global   *slog.Logger
	levelVar = &slog.LevelVar{}
)

func init() {
	global = build(Config{Level: InfoLevel, Format: "text", Output: "stderr"})
}

// Setup replaces the global logger according to cfg. Interactive commands
// log to stderr so structured records never interleave with the prompt.
func Setup(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	global = build(cfg)
}

// L returns the global logger.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Named returns the global logger scoped to a component name.
func Named(component string) *slog.Logger {
	return L().With("component", component)
}

// SetLevel dynamically changes the logging level.
func SetLevel(l Level) {
	levelVar.Set(slogLevel(l))
}

func build(cfg Config) *slog.Logger {
	levelVar.Set(slogLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: levelVar}
	w := writer(cfg.Output)

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func writer(output string) io.Writer {
	switch output {
	case "stdout":
		return os.Stdout
	case "stderr", "":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}

func slogLevel(l Level) slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
