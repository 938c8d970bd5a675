package component

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// Sink receives rendered output
type Sink interface {
	Write(ctx context.Context, name, output string) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(ctx context.Context, name, output string) error

// Write calls f
func (f SinkFunc) Write(ctx context.Context, name, output string) error {
	return f(ctx, name, output)
}

// Discard drops all output
var Discard Sink = SinkFunc(func(context.Context, string, string) error { return nil })

// FileSink replaces a file with each render. Readers never see a partial
// write.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Write atomically replaces the file with output
func (s *FileSink) Write(ctx context.Context, name, output string) error {
	if err := atomic.WriteFile(s.path, strings.NewReader(output)); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// WriterSink writes each render to w followed by a newline
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write writes output to the underlying writer
func (s *WriterSink) Write(ctx context.Context, name, output string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.w, output+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
