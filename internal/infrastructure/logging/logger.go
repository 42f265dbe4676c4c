package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

const serviceName = "lumend"

// Logger is the daemon's structured logger.
//
// A *Logger satisfies the Logger interfaces declared by the domain
// packages (Debug/Info/Warn/Error with key-value args) and can be passed
// to them directly. It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger writing to cfg.Output ("stdout" or "stderr").
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(cfg, version, writerFor(cfg.Output))
}

// NewWithWriter builds a Logger writing to w. Only cfg.Level and
// cfg.Format are used.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	h := newHandler(cfg.Format, w, parseLevel(cfg.Level)).WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h)}
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// newHandler returns a text handler for format "text" and JSON otherwise.
func newHandler(format string, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// parseLevel maps debug, info, warn(ing) and error; anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component returns a child logger tagged component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Device returns the child logger for one HID interface. The device adds
// its serial once it is resolved.
func (l *Logger) Device(hidID string) *Logger {
	return l.With("component", "device", "hid_id", hidID)
}

// Default is the logger used before the configuration is loaded: JSON on
// stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
