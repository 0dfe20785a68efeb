package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer that rotates the underlying file once it
// grows past a size limit. Rotation shifts the numbered chain up one slot
// (server.log -> server.log.1 -> server.log.2) and drops the oldest.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu          sync.Mutex
	file        *os.File
	size        int64
	syncOnWrite bool // fsync after every write so tail -f keeps up
}

// NewRotatingWriter opens (or creates) the log file at path. maxSizeMB is
// the rotation threshold in megabytes; maxFiles bounds the rotated chain.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:        path,
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		maxFiles:    maxFiles,
		syncOnWrite: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles the per-write fsync. Disabling it trades
// real-time visibility for throughput.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncOnWrite = enabled
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			// Keep writing to the current file rather than dropping entries.
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.syncOnWrite && err == nil {
		_ = w.file.Sync()
	}
	return n, err
}

// Sync flushes the current file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	// Shift the chain from the top so nothing is overwritten before it
	// has moved: .maxFiles is dropped, .n becomes .n+1, current becomes .1.
	_ = os.Remove(w.slot(w.maxFiles))
	for n := w.maxFiles - 1; n >= 1; n-- {
		_ = os.Rename(w.slot(n), w.slot(n+1))
	}
	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.slot(1)); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.size = 0
	return w.open()
}

func (w *RotatingWriter) slot(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}
