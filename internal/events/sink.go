package events

import (
	"context"
	"errors"
	"sync"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Events error codes
const (
	ErrCodeSinkClosed types.ErrorCode = "EVENT_SINK_CLOSED"
	ErrCodeSinkFailed types.ErrorCode = "EVENT_SINK_FAILED"
	ErrCodeSinkConfig types.ErrorCode = "EVENT_SINK_CONFIG"
	ErrCodeSinkEncode types.ErrorCode = "EVENT_ENCODE_FAILED"
)

// Sink consumes progress events. Publish is called from run goroutines and
// must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, ev pipeline.ProgressEvent) error
	Close() error
}

// ErrorHandler is called when a sink rejects an event.
type ErrorHandler func(err error, ev pipeline.ProgressEvent)

// Fanout publishes every event to all of its sinks.
type Fanout struct {
	mu      sync.RWMutex
	sinks   []Sink
	onError ErrorHandler
	closed  bool
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout)

// WithErrorHandler sets the handler for sink failures. Default: ignore.
func WithErrorHandler(handler ErrorHandler) FanoutOption {
	return func(f *Fanout) {
		if handler != nil {
			f.onError = handler
		}
	}
}

// NewFanout creates a Fanout over sinks. Nil sinks are skipped.
func NewFanout(sinks []Sink, opts ...FanoutOption) *Fanout {
	f := &Fanout{onError: func(error, pipeline.ProgressEvent) {}}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Len returns the number of sinks.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sinks)
}

// Publish delivers ev to every sink. It fails only when the fanout is
// closed; individual sink errors go to the ErrorHandler.
func (f *Fanout) Publish(ctx context.Context, ev pipeline.ProgressEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return types.NewError(ErrCodeSinkClosed, "event fanout is closed")
	}
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			f.onError(err, ev)
		}
	}
	return nil
}

// Emit adapts the fanout to the engine's emit callback.
func (f *Fanout) Emit(ctx context.Context) func(pipeline.ProgressEvent) {
	return func(ev pipeline.ProgressEvent) {
		_ = f.Publish(ctx, ev)
	}
}

// Close closes every sink and returns their joined errors.
func (f *Fanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*Fanout)(nil)
