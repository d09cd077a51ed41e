// Package logging provides the bot's structured event log: a single
// Event(name, fields...) call used pervasively as an observability hook.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor  = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgHiYellow)
	errorColor = color.New(color.FgHiRed)
	eventColor = color.New(color.FgHiMagenta)

	logger *slog.Logger
	once   sync.Once
)

// Init installs the global logger at the given level ("DEBUG", "INFO",
// "WARN", "ERROR"). Safe to call once at startup; Event and friends fall
// back to an INFO logger if Init was never called.
func Init(level string) {
	lvl := parseLevel(level)
	logger = slog.New(newHandler(os.Stdout, lvl))
	slog.SetDefault(logger)
}

func get() *slog.Logger {
	once.Do(func() {
		if logger == nil {
			logger = slog.New(newHandler(os.Stdout, slog.LevelInfo))
		}
	})
	return logger
}

// Event emits a single structured log line: event name plus key/value fields.
func Event(name string, kv ...any) {
	get().Info(name, kv...)
}

// Warn emits an event at warning level.
func Warn(name string, kv ...any) {
	get().Warn(name, kv...)
}

// Error emits an event at error level.
func Error(name string, kv ...any) {
	get().Error(name, kv...)
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type handler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	attrs []slog.Attr
}

func newHandler(out io.Writer, level slog.Level) *handler {
	return &handler{mu: &sync.Mutex{}, out: out, level: level}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(eventColor.Sprint(r.Message))

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *handler) WithGroup(string) slog.Handler { return h }

func writeAttr(b *strings.Builder, a slog.Attr) {
	b.WriteByte(' ')
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(fmt.Sprint(a.Value.Any()))
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return errorColor.Sprint("ERR ")
	case l >= slog.LevelWarn:
		return warnColor.Sprint("WARN")
	default:
		return infoColor.Sprint("INFO")
	}
}
