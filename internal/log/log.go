// Package log configures log/slog for the tortuga binary: level names and a
// log file that can be rotated under a running process.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

const (
	LevelTrace = slog.LevelDebug - 4
	// LevelNone is above every level a record can carry.
	LevelNone = slog.LevelError + 100
)

// ParseLevel maps trace, debug, info, warn, error and none to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "none", "":
		return LevelNone, nil
	default:
		return LevelNone, fmt.Errorf("unknown log level '%s'", s)
	}
}

// File is an append-only log file that can be reopened in place, so that
// `mv tortuga.log tortuga.bak && kill -HUP <pid>` rotates it.
type File struct {
	path string
	mu   sync.Mutex
	fh   *os.File
	sigs chan os.Signal
}

func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log directory for '%s': %w", path, err)
	}
	f := &File{path: path}
	if err := f.Reopen(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fh == nil {
		return 0, os.ErrClosed
	}
	return f.fh.Write(p)
}

// Reopen closes the current handle and opens the path again.
func (f *File) Reopen() error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file '%s': %w", f.path, err)
	}
	f.mu.Lock()
	old := f.fh
	f.fh = fh
	f.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// ReopenOnHangup reopens the file every time the process receives SIGHUP.
func (f *File) ReopenOnHangup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sigs != nil {
		return
	}
	f.sigs = make(chan os.Signal, 1)
	signal.Notify(f.sigs, syscall.SIGHUP)
	go func(sigs chan os.Signal) {
		for range sigs {
			if err := f.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
	}(f.sigs)
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sigs != nil {
		signal.Stop(f.sigs)
		close(f.sigs)
		f.sigs = nil
	}
	if f.fh == nil {
		return nil
	}
	err := f.fh.Close()
	f.fh = nil
	return err
}

// New builds the JSON logger used by the binary. With an empty path it writes
// to stderr; the returned closer is then a no-op.
func New(level, path string) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if path != "" {
		f, err := OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		f.ReopenOnHangup()
		w, closer = f, f
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	return logger, closer, nil
}
