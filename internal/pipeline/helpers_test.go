package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/internal/fewshot"
	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/llm/providers"
	"github.com/zero-day-ai/text2cypher/internal/schema"
)

var errSyntax = errors.New("syntax error")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func diseaseSchema() schema.Raw {
	return schema.Raw{
		NodeProps: map[string][]schema.RawProperty{
			"Disease": {{Name: "name", Type: "STRING"}},
			"Symptom": {{Name: "name", Type: "STRING"}},
		},
		Relationships: []schema.RawRelationship{
			{Triple: schema.Relationship{Start: "Disease", Type: "has_symptom", End: "Symptom"}},
		},
	}
}

func newTestGraph() *graph.MockGraphClient {
	return graph.NewMockGraphClient().SetSchema(diseaseSchema())
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	engine, err := NewEngine(append([]EngineOption{WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)
	return engine
}

func newRequest(provider llm.LLMProvider, client graph.GraphClient) Request {
	return Request{
		Question:  Question{Text: "Which diseases present symptom S?"},
		LLM:       provider,
		Graph:     client,
		ModelName: "test-model",
		Database:  "diseases",
	}
}

// recorder collects the events of one run.
type recorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recorder) emit(ev ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressEvent(nil), r.events...)
}

// sequence returns event types with runs of answer deltas collapsed.
func (r *recorder) sequence() []EventType {
	var seq []EventType
	for _, ev := range r.all() {
		if ev.Type == EventAnswerDelta && len(seq) > 0 && seq[len(seq)-1] == EventAnswerDelta {
			continue
		}
		seq = append(seq, ev.Type)
	}
	return seq
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.all() {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) messages(t EventType) []string {
	var out []string
	for _, ev := range r.all() {
		if ev.Type == t {
			out = append(out, ev.Message)
		}
	}
	return out
}

func (r *recorder) last() ProgressEvent {
	events := r.all()
	if len(events) == 0 {
		return ProgressEvent{}
	}
	return events[len(events)-1]
}

// promptIDs lists which prompt each model call used.
func promptIDs(p *providers.MockProvider) []string {
	var ids []string
	for _, c := range p.GetCalls() {
		id, _ := c.Request.Metadata["prompt"].(string)
		ids = append(ids, id)
	}
	return ids
}

func userMessage(c providers.MockCall) string {
	for _, m := range c.Request.Messages {
		if m.Role == llm.RoleUser {
			return m.Content
		}
	}
	return ""
}

// recordingRetriever serves fixed examples and captures write-backs.
type recordingRetriever struct {
	mu       sync.Mutex
	examples []fewshot.Example
	entries  []fewshot.Entry
}

func (r *recordingRetriever) Name() string { return "recording" }

func (r *recordingRetriever) Retrieve(ctx context.Context, question, database string) []fewshot.Example {
	return r.examples
}

func (r *recordingRetriever) Record(ctx context.Context, entry fewshot.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingRetriever) recorded() []fewshot.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fewshot.Entry(nil), r.entries...)
}
