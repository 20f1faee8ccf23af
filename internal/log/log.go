// Package log wraps log/slog with the process-wide logger used by assumer.
//
// Records fan out to stderr (warn and above unless verbose) and, when a debug
// directory is configured, to a daily JSONL file at every level. Attributes
// whose key names a secret are masked before any handler sees them.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	logger = slog.Default()
	file   *FileWriter
)

// Options configures the logger.
type Options struct {
	// Verbose lowers the stderr threshold to debug.
	Verbose bool
	// JSONFormat writes stderr records as JSON instead of key=value text.
	JSONFormat bool
	// DebugDir enables JSONL file logging into this directory.
	DebugDir string
	// RetentionDays removes older files in DebugDir at startup (0 keeps all).
	RetentionDays int
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// Redacted replaces the value of any attribute matched by isSecret.
const Redacted = "[redacted]"

// secretKeys are attribute keys, lowercased, never written in clear.
var secretKeys = map[string]bool{
	"token":             true,
	"auth_token":        true,
	"authorization":     true,
	"secret_access_key": true,
	"session_token":     true,
}

func isSecret(key string) bool {
	return secretKeys[strings.ToLower(key)]
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if isSecret(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// Init replaces the global logger.
func Init(opts Options) error {
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	fan := fanout{newHandler(w, level, opts.JSONFormat)}

	if opts.DebugDir != "" {
		if opts.RetentionDays > 0 {
			Cleanup(opts.DebugDir, opts.RetentionDays)
		}
		fw, err := NewFileWriter(opts.DebugDir)
		if err != nil {
			return err
		}
		Close()
		file = fw
		fan = append(fan, newHandler(fw, slog.LevelDebug, true))
	}

	setLogger(slog.New(fan))
	return nil
}

func newHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func setLogger(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

// Close closes the debug file, if any.
func Close() {
	if file != nil {
		file.Close()
		file = nil
	}
}

// fanout sends each record to every handler enabled at its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// SetRole tags every later record with role_arn so lines from concurrent
// runs sharing a debug dir can be told apart.
func SetRole(roleARN string) {
	setLogger(logger.With(slog.String("role_arn", roleARN)))
}
