package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// DefaultMaxConcurrency bounds a batch when the caller passes no limit.
const DefaultMaxConcurrency = 5

// Outcome is the terminal state of one batch request.
type Outcome struct {
	Index    int
	Result   *RunResult
	Err      error
	Kind     ErrorKind
	Duration time.Duration
}

// Event returns the terminal payload of the outcome.
func (o Outcome) Event() ProgressEvent {
	if o.Err != nil {
		return newEvent("", EventError, o.Err.Error())
	}
	ev := newEvent("", EventResult, o.Result.Answer)
	ev.Result = o.Result
	return ev
}

// BatchRunner runs independent requests through one Engine.
type BatchRunner struct {
	engine  *Engine
	limiter *rate.Limiter
	onEvent func(index int, ev ProgressEvent)
	logger  *slog.Logger
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithRateLimit paces run starts to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) BatchOption {
	return func(b *BatchRunner) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithEventHandler receives every event of every run, tagged with the
// request index. It is called from run goroutines concurrently.
func WithEventHandler(fn func(index int, ev ProgressEvent)) BatchOption {
	return func(b *BatchRunner) {
		b.onEvent = fn
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatchRunner creates a runner over engine.
func NewBatchRunner(engine *Engine, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes reqs with at most maxConcurrency runs in flight (default 5).
// The result has one Outcome per request at the request's index. A failed
// run never affects its siblings; requests not started before ctx ends are
// reported as cancelled.
func (b *BatchRunner) Run(ctx context.Context, reqs []Request, maxConcurrency int) []Outcome {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	outcomes := make([]Outcome, len(reqs))
	sem := semaphore.NewWeighted(int64(maxConcurrency))
	var wg sync.WaitGroup

	b.logger.InfoContext(ctx, "batch started",
		"requests", len(reqs),
		"max_concurrency", maxConcurrency)

	for i := range reqs {
		if err := b.admit(ctx, sem); err != nil {
			for j := i; j < len(reqs); j++ {
				cancelled := types.WrapError(ErrCodeRunCancelled, "batch cancelled before run started", err)
				outcomes[j] = Outcome{Index: j, Err: cancelled, Kind: KindCancelled}
			}
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = b.runOne(ctx, i, reqs[i])
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	b.logger.InfoContext(ctx, "batch completed",
		"requests", len(reqs),
		"failed", failed)
	return outcomes
}

func (b *BatchRunner) admit(ctx context.Context, sem *semaphore.Weighted) error {
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			sem.Release(1)
			return err
		}
	}
	return nil
}

func (b *BatchRunner) runOne(ctx context.Context, index int, req Request) Outcome {
	var emit func(ProgressEvent)
	if b.onEvent != nil {
		emit = func(ev ProgressEvent) { b.onEvent(index, ev) }
	}

	start := time.Now()
	result, err := b.engine.Run(ctx, req, emit)
	return Outcome{
		Index:    index,
		Result:   result,
		Err:      err,
		Kind:     Classify(err),
		Duration: time.Since(start),
	}
}
