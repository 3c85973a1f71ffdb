package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink is a logging destination. Sinks are invoked by the pipeline's single
// consumer goroutine, one record at a time, in enqueue order. A sink that
// returns an error or panics is isolated by the pipeline; it never stops
// delivery to other sinks.
type Sink interface {
	Write(r Record) error
}

// SinkFunc adapts any callable into a Sink, so surrounding code (for
// example a UI widget append) can register a plain function.
type SinkFunc func(r Record) error

// Write implements Sink.
func (f SinkFunc) Write(r Record) error {
	return f(r)
}

// ConsoleSink writes formatted records to a single io.Writer, typically
// os.Stderr.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out. A nil out defaults
// to os.Stderr.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleSink{out: out}
}

// Write implements Sink.
func (s *ConsoleSink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, r.Format())
	return err
}

// FileSink appends formatted records to a day-stamped log file
// (app_YYYYMMDD.log) under the configured directory.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink creates the log directory if needed and opens today's log file
// for appending.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("app_%s.log", time.Now().Format("20060102"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileSink{file: f}, nil
}

// Write implements Sink.
func (s *FileSink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.file, r.Format())
	return err
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
