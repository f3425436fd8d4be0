package console

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Log keeps the most recent lines written to it.
type Log struct {
	mu      sync.Mutex
	lines   []string
	max     int
	partial []byte
	version uint64
}

// NewLog keeps up to max lines.
func NewLog(max int) *Log {
	if max <= 0 {
		max = 64
	}
	return &Log{max: max}
}

// Write splits p into lines. A trailing partial line waits for its newline.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	buf := append(l.partial, p...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		l.push(string(bytes.TrimRight(buf[:i], "\r")))
		buf = buf[i+1:]
	}
	l.partial = append(l.partial[:0], buf...)
	return len(p), nil
}

func (l *Log) push(s string) {
	l.lines = append(l.lines, s)
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
	l.version++
}

// Tail returns up to n of the newest lines, oldest first.
func (l *Log) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.lines) {
		n = len(l.lines)
	}
	return append([]string(nil), l.lines[len(l.lines)-n:]...)
}

// Version changes every time a line is added.
func (l *Log) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// NewHandler returns a handler that sends every record to primary and a
// compact copy, without timestamps, into l.
func NewHandler(primary slog.Handler, l *Log, level slog.Leveler) slog.Handler {
	compact := slog.NewTextHandler(l, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return teeHandler{primary, compact}
}

type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// trimLevel shortens "level=INFO msg=..." to "INFO ...".
func trimLevel(s string) string {
	s = strings.TrimPrefix(s, "level=")
	return strings.Replace(s, " msg=", " ", 1)
}
