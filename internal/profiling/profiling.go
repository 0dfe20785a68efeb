// Package profiling captures CPU, heap, and execution-trace profiles
// for performance investigation of search and load paths.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options name the profile output files. An empty path disables that
// profile.
type Options struct {
	CPUPath   string
	HeapPath  string
	TracePath string
}

// Enabled reports whether any profile output was requested.
func (o Options) Enabled() bool {
	return o.CPUPath != "" || o.HeapPath != "" || o.TracePath != ""
}

// Session holds the profile outputs opened for one command run.
// Start it before the workload, Stop it after; Stop also writes the
// heap snapshot when one was requested.
type Session struct {
	cpuFile   *os.File
	traceFile *os.File
	heapPath  string
}

// Start opens the requested profiles. On error, anything already
// started is stopped so no partial session leaks.
func Start(opts Options) (*Session, error) {
	s := &Session{heapPath: opts.HeapPath}

	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		s.cpuFile = f
	}

	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("failed to start trace: %w", err)
		}
		s.traceFile = f
	}

	return s, nil
}

// Stop flushes and closes every active profile. Calling it again is a
// no-op.
func (s *Session) Stop() error {
	var errs []error

	s.stopCPU()

	if s.traceFile != nil {
		trace.Stop()
		if err := s.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close trace file: %w", err))
		}
		s.traceFile = nil
	}

	if s.heapPath != "" {
		if err := writeHeap(s.heapPath); err != nil {
			errs = append(errs, err)
		}
		s.heapPath = ""
	}

	return errors.Join(errs...)
}

func (s *Session) stopCPU() {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = s.cpuFile.Close()
		s.cpuFile = nil
	}
}

// writeHeap snapshots the heap after a forced GC so the numbers
// reflect live objects.
func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}

	return nil
}
