package events

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Format selects how WriterSink renders events.
type Format string

const (
	// FormatText prints one "[Label] message" line per event and streams
	// answer deltas inline.
	FormatText Format = "text"
	// FormatJSON prints one wire-form JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", types.NewError(ErrCodeSinkConfig, fmt.Sprintf("unknown event format %q, must be text or json", name))
	}
}

// WriterSink renders events to an io.Writer.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	format  Format
	verbose bool
	inDelta bool
}

// WriterOption configures a WriterSink.
type WriterOption func(*WriterSink)

// WithVerbose makes text output include every event. Without it only
// corrections, errors and the answer are shown.
func WithVerbose(verbose bool) WriterOption {
	return func(s *WriterSink) {
		s.verbose = verbose
	}
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer, format Format, opts ...WriterOption) *WriterSink {
	s := &WriterSink{w: w, format: format, verbose: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WriterSink) Publish(ctx context.Context, ev pipeline.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.format == FormatJSON {
		err = s.writeJSON(ev)
	} else {
		err = s.writeText(ev)
	}
	if err != nil {
		return types.WrapError(ErrCodeSinkFailed, "failed to write event", err)
	}
	return nil
}

func (s *WriterSink) writeJSON(ev pipeline.ProgressEvent) error {
	data, err := ev.JSON()
	if err != nil {
		return types.WrapError(ErrCodeSinkEncode, "failed to encode event", err)
	}
	data = append(data, '\n')
	_, err = s.w.Write(data)
	return err
}

func (s *WriterSink) writeText(ev pipeline.ProgressEvent) error {
	if ev.Type == pipeline.EventAnswerDelta {
		s.inDelta = true
		_, err := io.WriteString(s.w, ev.Message)
		return err
	}

	if s.inDelta {
		s.inDelta = false
		if _, err := io.WriteString(s.w, "\n"); err != nil {
			return err
		}
	}

	switch ev.Type {
	case pipeline.EventResult:
		// The answer has already been streamed.
		return nil
	case pipeline.EventError, pipeline.EventCypherCorrection, pipeline.EventCypherExecutionError:
	default:
		if !s.verbose {
			return nil
		}
	}
	_, err := fmt.Fprintf(s.w, "[%s] %s\n", ev.Label, ev.Message)
	return err
}

// Close is a no-op; the writer belongs to the caller.
func (s *WriterSink) Close() error {
	return nil
}

var _ Sink = (*WriterSink)(nil)
