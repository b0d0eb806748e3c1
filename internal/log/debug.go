// Package log provides the debug log sink and the zap logger built on top of it.
package log

import (
	"os"
	"sync"
)

// DebugLogger handles debug logging to file and/or buffering.
// It implements zapcore.WriteSyncer so it can back a zap core directly.
// Output is buffered until SetFile decides where it goes.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
}

// NewDebugLogger returns a sink that buffers until SetFile is called.
func NewDebugLogger() *DebugLogger {
	return &DebugLogger{}
}

// Write writes to the file if set, otherwise appends to the buffer.
func (l *DebugLogger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.discard {
		return len(p), nil
	}

	if l.file != nil {
		n, err = l.file.Write(p)
		_ = l.file.Sync()
		return n, err
	}

	// p may be reused by the caller
	b := make([]byte, len(p))
	copy(b, p)
	l.buffer = append(l.buffer, b...)
	return len(p), nil
}

// Sync flushes the file when one is open.
func (l *DebugLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

// SetFile sets the debug log file path. Creates the file if it doesn't exist.
// If path is empty, discards all buffered logs and future logs.
func (l *DebugLogger) SetFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}

	if path == "" {
		l.discard = true
		l.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		l.discard = true
		l.buffer = nil
		return err
	}

	l.file = f
	l.discard = false

	if len(l.buffer) > 0 {
		_, _ = f.Write(l.buffer)
		_ = f.Sync()
		l.buffer = nil
	}

	return nil
}

// Buffered returns a copy of the output held before a destination was chosen.
func (l *DebugLogger) Buffered() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.buffer...)
}

// Close closes the debug log file if open.
func (l *DebugLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil
	return err
}
