package pipeline

import (
	"context"
	"errors"

	"github.com/zero-day-ai/text2cypher/internal/fewshot"
	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/prompt"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// DefaultRowLimit caps the rows kept from one query.
const DefaultRowLimit = 100

// promptStep renders one registered prompt and sends it to a model.
type promptStep struct {
	id       string
	prompts  prompt.PromptRegistry
	renderer prompt.TemplateRenderer
}

func (s promptStep) request(model string, vars map[string]any) (llm.CompletionRequest, error) {
	p, err := s.prompts.Get(s.id)
	if err != nil {
		return llm.CompletionRequest{}, err
	}
	rendered, err := s.renderer.Render(p, vars)
	if err != nil {
		return llm.CompletionRequest{}, err
	}
	return llm.CompletionRequest{
		Model:    model,
		Messages: rendered.Messages(),
		Metadata: map[string]any{"prompt": s.id},
	}, nil
}

func (s promptStep) complete(ctx context.Context, provider llm.LLMProvider, model string, vars map[string]any) (string, error) {
	req, err := s.request(model, vars)
	if err != nil {
		return "", err
	}
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return "", types.WrapError(ErrCodeGenerationFailed, s.id+" model call failed", err)
	}
	return resp.Text(), nil
}

// Generator asks the model for a first query.
type Generator struct{ step promptStep }

// Generate returns the model's query text as-is.
func (g Generator) Generate(ctx context.Context, provider llm.LLMProvider, model, schemaText string, examples []fewshot.Example, question Question) (string, error) {
	return g.step.complete(ctx, provider, model, map[string]any{
		"schema":           schemaText,
		"examples":         fewshot.Format(examples),
		"question":         question.Text,
		"question_context": question.FormatContext(),
	})
}

// Corrector asks the model to repair a query given an error or diagnosis.
type Corrector struct{ step promptStep }

// Correct returns the model's repaired query text as-is.
func (c Corrector) Correct(ctx context.Context, provider llm.LLMProvider, model, schemaText string, question Question, cypher, diagnosis string) (string, error) {
	return c.step.complete(ctx, provider, model, map[string]any{
		"schema":           schemaText,
		"question":         question.Text,
		"question_context": question.FormatContext(),
		"cypher":           cypher,
		"errors":           diagnosis,
	})
}

// Evaluator asks the model whether a result answers the question.
type Evaluator struct{ step promptStep }

// Evaluate returns Adequate when the reply passes IsOk, otherwise the reply
// is the diagnosis.
func (e Evaluator) Evaluate(ctx context.Context, provider llm.LLMProvider, model string, question Question, cypher, output string) (Verdict, error) {
	text, err := e.step.complete(ctx, provider, model, map[string]any{
		"question":         question.Text,
		"question_context": question.FormatContext(),
		"cypher":           cypher,
		"database_output":  output,
	})
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Adequate: IsOk(text), Reason: text}, nil
}

// Summarizer streams the final answer.
type Summarizer struct{ step promptStep }

// Summarize streams the answer, calling onDelta for every chunk, and returns
// the concatenation.
func (s Summarizer) Summarize(ctx context.Context, provider llm.LLMProvider, model string, question Question, cypher, contextText string, onDelta func(string)) (string, error) {
	req, err := s.step.request(model, map[string]any{
		"question":         question.Text,
		"question_context": question.FormatContext(),
		"cypher":           cypher,
		"context":          contextText,
	})
	if err != nil {
		return "", err
	}

	chunks, err := provider.Stream(ctx, req)
	if err != nil {
		return "", types.WrapError(ErrCodeGenerationFailed, "answer stream failed to start", err)
	}
	answer, err := llm.Drain(ctx, chunks, onDelta)
	if err != nil {
		return answer, types.WrapError(ErrCodeGenerationFailed, "answer stream failed", err)
	}
	return answer, nil
}

// Executor runs queries with a row cap.
type Executor struct {
	RowLimit int
}

// Execute runs cypher. Store failures become a failed ExecutionResult; the
// returned error is non-nil only when ctx ended.
func (x Executor) Execute(ctx context.Context, client graph.GraphClient, cypher string) (ExecutionResult, error) {
	limit := x.RowLimit
	if limit <= 0 {
		limit = DefaultRowLimit
	}

	res, err := client.Query(ctx, cypher, nil, graph.WithRowLimit(limit))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ExecutionResult{}, ctxErr
		}
		return ExecutionResult{Err: rootMessage(err)}, nil
	}

	rows := res.Records
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return ExecutionResult{Rows: rows, Truncated: res.Truncated || len(res.Records) > limit}, nil
}

// rootMessage returns the innermost error text, which is what the store
// itself reported.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// newSteps wires the model steps to one prompt registry.
func newSteps(prompts prompt.PromptRegistry, renderer prompt.TemplateRenderer) (Generator, Corrector, Evaluator, Summarizer) {
	step := func(id string) promptStep {
		return promptStep{id: id, prompts: prompts, renderer: renderer}
	}
	return Generator{step(prompt.GenerateCypherID)},
		Corrector{step(prompt.CorrectCypherID)},
		Evaluator{step(prompt.EvaluateOutputID)},
		Summarizer{step(prompt.SummarizeAnswerID)}
}
