// Package logging installs the slog default logger. Records go to stderr and
// to a rotating log file; stderr can be muted while the terminal shows the
// credits.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gigurra/stillalive/cmd/common"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level string // debug, info, warn or error
	// File is the rotated log file. Empty means DefaultFile().
	File string
}

// Logger owns the outputs of the default slog logger.
type Logger struct {
	*slog.Logger
	console *mutableWriter
	file    *lj.Logger
}

// DefaultFile is the log file used when none is configured.
func DefaultFile() string {
	return filepath.Join(common.CacheDir(), "stillalive.log")
}

// Setup builds the logger and makes it the slog default.
func Setup(opts Options) *Logger {
	return setup(opts, os.Stderr)
}

func setup(opts Options, stderr io.Writer) *Logger {
	level := ParseLevel(opts.Level)
	file := opts.File
	if file == "" {
		file = DefaultFile()
	}

	l := &Logger{
		console: &mutableWriter{w: stderr},
		file:    &lj.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true},
	}
	l.Logger = slog.New(multiHandler(
		slog.NewTextHandler(l.console, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(l.file, &slog.HandlerOptions{Level: level}),
	))
	slog.SetDefault(l.Logger)
	return l
}

// MuteConsole stops or resumes writing records to stderr. The log file keeps
// receiving them.
func (l *Logger) MuteConsole(mute bool) {
	l.console.muted.Store(mute)
}

// Close closes the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}

// ParseLevel converts a level name to slog.Level. Unknown names give info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

type mutableWriter struct {
	w     io.Writer
	muted atomic.Bool
}

func (m *mutableWriter) Write(p []byte) (int, error) {
	if m.muted.Load() {
		return len(p), nil
	}
	return m.w.Write(p)
}

// multiHandler fans out log records to multiple handlers.
func multiHandler(handlers ...slog.Handler) slog.Handler { return &multi{hs: handlers} }

type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.hs {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}
