// Package log provides helpers for creating a configured slog.Logger.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, everything goes to the file and to stderr. The
// terminal keypad simulator owns the screen, so its runs log to a file only.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// LevelTrace is below Debug and enables the HID report dump.
const LevelTrace slog.Level = -8

// ParseLevel maps a level name to a slog level. Unknown names select info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only the levels accepted by pass to h.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// Options controls SetupLogger.
type Options struct {
	Level string
	File  string
	// Quiet drops console output. Used when the terminal is taken over by
	// the simulator.
	Quiet bool
}

// SetupLogger builds a slog.Logger with console and optional file handlers.
// The returned closers must be closed on exit.
func SetupLogger(opts Options) (*slog.Logger, []io.Closer, error) {
	return setup(opts, os.Stdout, os.Stderr)
}

func setup(opts Options, stdout, stderr io.Writer) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel}
	var handlers []slog.Handler
	var closers []io.Closer

	switch {
	case opts.Quiet:
	case opts.File == "":
		handlers = append(handlers,
			LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: slog.NewTextHandler(stdout, hopts)},
			LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: slog.NewTextHandler(stderr, hopts)},
		)
	default:
		handlers = append(handlers, slog.NewTextHandler(stderr, hopts))
	}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, f)
		handlers = append(handlers, slog.NewTextHandler(f, hopts))
	}
	return slog.New(MultiHandler{hs: handlers}), closers, nil
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}
