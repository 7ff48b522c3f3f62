package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/text2cypher/internal/fewshot"
	"github.com/zero-day-ai/text2cypher/internal/prompt"
	"github.com/zero-day-ai/text2cypher/internal/schema"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

const (
	// DefaultTimeout bounds one run end to end.
	DefaultTimeout = 60 * time.Second

	writeBackTimeout = 30 * time.Second
	streamBuffer     = 64
)

// Engine runs requests through the generate/execute/correct state machine.
// It is safe for concurrent use; runs share nothing but the example
// retriever.
type Engine struct {
	settings  Settings
	overrides Overrides
	timeout   time.Duration
	exclude   []string
	retriever fewshot.Retriever
	prompts   prompt.PromptRegistry
	renderer  prompt.TemplateRenderer
	logger    *slog.Logger
	tracer    trace.Tracer
	stats     StatsRecorder

	generator  Generator
	corrector  Corrector
	evaluator  Evaluator
	summarizer Summarizer
	executor   Executor

	pending sync.WaitGroup
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithVariant applies a variant's preset settings.
func WithVariant(v Variant) EngineOption {
	return func(e *Engine) {
		e.settings = v.Settings()
	}
}

// WithSettings sets the run settings explicitly.
func WithSettings(s Settings) EngineOption {
	return func(e *Engine) {
		e.settings = s
	}
}

// WithOverrides keeps individual settings fixed across variants, including
// a variant chosen per request.
func WithOverrides(o Overrides) EngineOption {
	return func(e *Engine) {
		e.overrides = o
	}
}

// WithTimeout bounds each run.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRowLimit caps the rows kept per query.
func WithRowLimit(n int) EngineOption {
	return func(e *Engine) {
		e.executor.RowLimit = n
	}
}

// WithExcludeLabels hides labels from the schema shown to the model, in
// addition to schema.DefaultExclusions.
func WithExcludeLabels(labels ...string) EngineOption {
	return func(e *Engine) {
		e.exclude = append(e.exclude, labels...)
	}
}

// WithRetriever sets the example source. Without one, runs have no examples.
func WithRetriever(r fewshot.Retriever) EngineOption {
	return func(e *Engine) {
		e.retriever = r
	}
}

// WithPrompts replaces the built-in prompt registry.
func WithPrompts(p prompt.PromptRegistry) EngineOption {
	return func(e *Engine) {
		e.prompts = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and step spans.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithStats sets the recorder that receives one RunStats per run.
func WithStats(s StatsRecorder) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.stats = s
		}
	}
}

// NewEngine creates an engine. Defaults: the retry_check variant, a 60s
// timeout, 100 rows, the built-in prompts, no examples.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		settings:  VariantRetryCheck.Settings(),
		timeout:   DefaultTimeout,
		retriever: fewshot.NewKeyedRetriever(nil),
		renderer:  prompt.NewTemplateRenderer(),
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/zero-day-ai/text2cypher/internal/pipeline"),
		stats:     nopStats{},
		executor:  Executor{RowLimit: DefaultRowLimit},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settings = e.overrides.Apply(e.settings)

	if e.settings.MaxRetries < 0 {
		return nil, types.NewError(ErrCodeConfig, fmt.Sprintf("max_retries must be >= 0, got %d", e.settings.MaxRetries))
	}
	if e.prompts == nil {
		registry, err := prompt.NewDefaultRegistry("")
		if err != nil {
			return nil, types.WrapError(ErrCodeConfig, "failed to load built-in prompts", err)
		}
		e.prompts = registry
	}
	for _, id := range []string{prompt.GenerateCypherID, prompt.CorrectCypherID, prompt.EvaluateOutputID, prompt.SummarizeAnswerID} {
		if _, err := e.prompts.Get(id); err != nil {
			return nil, err
		}
	}

	e.generator, e.corrector, e.evaluator, e.summarizer = newSteps(e.prompts, e.renderer)
	return e, nil
}

// Settings returns the engine's default run settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Retriever returns the example source selected for this engine.
func (e *Engine) Retriever() fewshot.Retriever {
	return e.retriever
}

func (e *Engine) settingsFor(req Request) Settings {
	if req.Variant != "" {
		if v, err := ParseVariant(string(req.Variant)); err == nil {
			return e.overrides.Apply(v.Settings())
		}
	}
	return e.settings
}

// Stream starts a run and returns its events. The channel closes after the
// terminal result or error event. If ctx ends while the consumer is not
// reading, undelivered events are dropped.
func (e *Engine) Stream(ctx context.Context, req Request) <-chan ProgressEvent {
	ch := make(chan ProgressEvent, streamBuffer)
	go func() {
		defer close(ch)
		_, _ = e.Run(ctx, req, func(ev ProgressEvent) {
			select {
			case ch <- ev:
				return
			default:
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})
	}()
	return ch
}

// Run executes req, passing every event to emit (which may be nil), and
// returns the result. The last event is always EventResult or EventError.
func (e *Engine) Run(ctx context.Context, req Request, emit func(ProgressEvent)) (*RunResult, error) {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}

	settings := e.settingsFor(req)
	r := &run{
		engine:   e,
		req:      req,
		settings: settings,
		id:       uuid.NewString(),
		emit:     emit,
		retry:    RetryState{MaxRetries: settings.MaxRetries},
	}
	r.logger = e.logger.With("run_id", r.id, "database", req.Database, "model", req.ModelName)

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	runCtx, span := e.tracer.Start(runCtx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", r.id),
		attribute.String("run.database", req.Database),
		attribute.String("run.model", req.ModelName),
		attribute.Int("run.max_retries", settings.MaxRetries),
		attribute.Bool("run.evaluate", settings.Evaluate),
	))
	defer span.End()

	r.logger.InfoContext(runCtx, "run started",
		"max_retries", settings.MaxRetries,
		"evaluate", settings.Evaluate)

	result, err := r.start(runCtx)
	if err != nil {
		err = e.terminalError(runCtx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "run failed",
			"kind", Classify(err),
			"corrections", r.retry.Attempts,
			"error", err)
		emit(newEvent(r.id, EventError, err.Error()))
	} else {
		span.SetAttributes(attribute.Int("run.corrections", r.retry.Attempts))
		r.logger.InfoContext(ctx, "run completed",
			"corrections", r.retry.Attempts,
			"duration", time.Since(start))
		ev := newEvent(r.id, EventResult, result.Answer)
		ev.Result = result
		emit(ev)
	}

	e.stats.RecordRun(ctx, RunStats{
		RunID:       r.id,
		Variant:     req.Variant,
		Database:    req.Database,
		Model:       req.ModelName,
		Corrections: r.retry.Attempts,
		Duration:    time.Since(start),
		Kind:        Classify(err),
	})
	return result, err
}

// Wait blocks until pending example write-backs have finished.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// terminalError turns context failures into RUN_TIMEOUT or RUN_CANCELLED.
func (e *Engine) terminalError(runCtx context.Context, err error) error {
	ctxErr := runCtx.Err()
	if ctxErr == nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) || (ctxErr == nil && errors.Is(err, context.DeadlineExceeded)) {
		return types.WrapError(ErrCodeRunTimeout, fmt.Sprintf("run exceeded its %s timeout", e.timeout), err)
	}
	return types.WrapError(ErrCodeRunCancelled, "run cancelled", err)
}

// run is the mutable state of one Engine.Run.
type run struct {
	engine   *Engine
	req      Request
	settings Settings
	id       string
	emit     func(ProgressEvent)
	logger   *slog.Logger
	retry    RetryState

	schemaText string
	cypher     string
	exec       *ExecutionResult
	verdict    *Verdict
	answer     string
}

func (r *run) start(ctx context.Context) (*RunResult, error) {
	if err := r.req.Validate(); err != nil {
		return nil, err
	}
	if err := r.loadSchema(ctx); err != nil {
		return nil, err
	}
	examples := r.engine.retriever.Retrieve(ctx, r.req.Question.Text, r.req.Database)
	r.logger.DebugContext(ctx, "examples selected",
		"retriever", r.engine.retriever.Name(),
		"count", len(examples))

	state := StateGenerate
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		switch state {
		case StateGenerate:
			err = r.generate(ctx, examples)
		case StateExecute:
			err = r.execute(ctx)
		case StateEvaluate:
			err = r.evaluate(ctx)
		case StateCorrect:
			err = r.correct(ctx)
		case StateSummarize:
			err = r.summarize(ctx)
		}
		if err != nil {
			return nil, err
		}

		next := transition(state, stepOutcome{exec: r.exec, verdict: r.verdict, evaluate: r.settings.Evaluate}, &r.retry)
		r.logger.DebugContext(ctx, "state transition",
			"from", state.String(),
			"to", next.String(),
			"attempts", r.retry.Attempts)
		state = next
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.writeBack(ctx)
	return &RunResult{Cypher: r.cypher, Question: r.req.Question.Text, Answer: r.answer}, nil
}

func (r *run) loadSchema(ctx context.Context) error {
	raw, err := r.req.Graph.Schema(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return types.WrapError(ErrCodeSchemaUnavailable, "failed to read graph schema", err)
	}

	view := schema.Project(raw, r.engine.exclude...)
	if view.Empty() {
		r.logger.WarnContext(ctx, "graph schema is empty after exclusions")
	}
	r.schemaText = view.String()
	return nil
}

func (r *run) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.engine.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("run.id", r.id),
		attribute.Int("run.attempt", r.retry.Attempts),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *run) generate(ctx context.Context, examples []fewshot.Example) (err error) {
	ctx, span := r.span(ctx, "pipeline.generate")
	defer func() { endSpan(span, err) }()

	cypher, err := r.engine.generator.Generate(ctx, r.req.LLM, r.req.ModelName, r.schemaText, examples, r.req.Question)
	if err != nil {
		return err
	}
	r.cypher = cypher
	r.logger.DebugContext(ctx, "cypher generated", "cypher", cypher)
	r.emit(newEvent(r.id, EventCypherGeneration, cypher))
	return nil
}

func (r *run) execute(ctx context.Context) (err error) {
	ctx, span := r.span(ctx, "pipeline.execute")
	defer func() { endSpan(span, err) }()

	res, err := r.engine.executor.Execute(ctx, r.req.Graph, r.cypher)
	if err != nil {
		return err
	}
	r.exec = &res
	r.verdict = nil

	span.SetAttributes(
		attribute.Bool("execute.failed", res.Failed()),
		attribute.Int("execute.rows", len(res.Rows)),
		attribute.Bool("execute.truncated", res.Truncated))

	if res.Failed() {
		r.logger.WarnContext(ctx, "cypher execution failed",
			"attempt", r.retry.Attempts,
			"error", res.Err)
		r.emit(newEvent(r.id, EventCypherExecutionError, res.Err))
		return nil
	}
	r.emit(newEvent(r.id, EventDatabaseOutput, res.Output()))
	return nil
}

func (r *run) evaluate(ctx context.Context) (err error) {
	ctx, span := r.span(ctx, "pipeline.evaluate")
	defer func() { endSpan(span, err) }()

	verdict, err := r.engine.evaluator.Evaluate(ctx, r.req.LLM, r.req.ModelName, r.req.Question, r.cypher, r.exec.Output())
	if err != nil {
		return err
	}
	r.verdict = &verdict
	span.SetAttributes(attribute.Bool("evaluate.adequate", verdict.Adequate))
	r.emit(newEvent(r.id, EventEvaluation, verdict.Reason))
	return nil
}

func (r *run) correct(ctx context.Context) (err error) {
	ctx, span := r.span(ctx, "pipeline.correct")
	defer func() { endSpan(span, err) }()

	diagnosis := r.exec.Err
	if !r.exec.Failed() && r.verdict != nil {
		diagnosis = r.verdict.Reason
	}

	cypher, err := r.engine.corrector.Correct(ctx, r.req.LLM, r.req.ModelName, r.schemaText, r.req.Question, r.cypher, diagnosis)
	if err != nil {
		return err
	}
	r.cypher = cypher
	r.logger.InfoContext(ctx, "cypher corrected",
		"attempt", r.retry.Attempts,
		"max_retries", r.retry.MaxRetries)
	r.emit(newEvent(r.id, EventCypherCorrection, diagnosis+" → "+cypher))
	return nil
}

func (r *run) summarize(ctx context.Context) (err error) {
	ctx, span := r.span(ctx, "pipeline.summarize")
	defer func() { endSpan(span, err) }()

	answer, err := r.engine.summarizer.Summarize(ctx, r.req.LLM, r.req.ModelName, r.req.Question, r.cypher, r.exec.Output(),
		func(delta string) {
			r.emit(newEvent(r.id, EventAnswerDelta, delta))
		})
	if err != nil {
		return err
	}
	r.answer = answer
	return nil
}

// writeBack offers a repaired run to a recording retriever in the
// background. Runs that needed no correction teach nothing new.
func (r *run) writeBack(ctx context.Context) {
	if !r.settings.WriteBack || r.retry.Attempts == 0 {
		return
	}
	recorder, ok := r.engine.retriever.(fewshot.Recorder)
	if !ok {
		return
	}

	success := !r.exec.Failed()
	if r.settings.Evaluate {
		success = r.verdict != nil && r.verdict.Adequate
	}
	entry := fewshot.Entry{
		Question: r.req.Question.Text,
		Cypher:   r.cypher,
		Model:    r.req.ModelName,
		Database: r.req.Database,
		Success:  success,
	}

	logger := r.logger
	r.engine.pending.Add(1)
	go func() {
		defer r.engine.pending.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeBackTimeout)
		defer cancel()
		if err := recorder.Record(wctx, entry); err != nil {
			logger.WarnContext(wctx, "example write-back failed", "error", err)
		}
	}()
}
