package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

func event(t pipeline.EventType, msg string) pipeline.ProgressEvent {
	return pipeline.ProgressEvent{
		Type:      t,
		Label:     t.Label(),
		Message:   msg,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RunID:     "run-1",
	}
}

func runEvents() []pipeline.ProgressEvent {
	result := event(pipeline.EventResult, "A and B.")
	result.Result = &pipeline.RunResult{Cypher: "MATCH (d) RETURN d", Question: "q", Answer: "A and B."}
	return []pipeline.ProgressEvent{
		event(pipeline.EventCypherGeneration, "MATCH (d RETURN d"),
		event(pipeline.EventCypherExecutionError, "syntax error"),
		event(pipeline.EventCypherCorrection, "syntax error → MATCH (d) RETURN d"),
		event(pipeline.EventDatabaseOutput, `[{"d":1}]`),
		event(pipeline.EventAnswerDelta, "A and"),
		event(pipeline.EventAnswerDelta, " B."),
		result,
	}
}

func publishAll(t *testing.T, s Sink, evs []pipeline.ProgressEvent) {
	t.Helper()
	for _, ev := range evs {
		require.NoError(t, s.Publish(context.Background(), ev))
	}
}

func TestWriterSink_Text(t *testing.T) {
	var buf bytes.Buffer
	publishAll(t, NewWriterSink(&buf, FormatText), runEvents())

	assert.Equal(t, strings.Join([]string{
		"[Cypher generation] MATCH (d RETURN d",
		"[Cypher execution error] syntax error",
		"[Cypher correction] syntax error → MATCH (d) RETURN d",
		`[Database output] [{"d":1}]`,
		"A and B.",
		"",
	}, "\n"), buf.String())
}

func TestWriterSink_TextQuiet(t *testing.T) {
	var buf bytes.Buffer
	publishAll(t, NewWriterSink(&buf, FormatText, WithVerbose(false)), runEvents())

	out := buf.String()
	assert.NotContains(t, out, "Cypher generation")
	assert.NotContains(t, out, "Database output")
	assert.Contains(t, out, "[Cypher correction] syntax error → MATCH (d) RETURN d\n")
	assert.True(t, strings.HasSuffix(out, "A and B.\n"))
}

func TestWriterSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	publishAll(t, NewWriterSink(&buf, FormatJSON), runEvents())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(runEvents()))

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "cypher_generation", first["event_type"])
	assert.Equal(t, "Cypher generation", first["label"])
	assert.Equal(t, "MATCH (d RETURN d", first["message"])
	assert.Equal(t, "2026-01-02T03:04:05Z", first["timestamp"])

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "result", last["event_type"])
	assert.Equal(t, map[string]any{"cypher": "MATCH (d) RETURN d", "question": "q", "answer": "A and B."}, last["result"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeSinkConfig))
}

type failingSink struct{ closed bool }

func (s *failingSink) Publish(context.Context, pipeline.ProgressEvent) error {
	return errors.New("disk full")
}

func (s *failingSink) Close() error {
	s.closed = true
	return errors.New("close failed")
}

type memorySink struct {
	mu     sync.Mutex
	events []pipeline.ProgressEvent
	closed bool
}

func (s *memorySink) Publish(_ context.Context, ev pipeline.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

func TestFanout(t *testing.T) {
	bad := &failingSink{}
	good := &memorySink{}

	var failures int
	f := NewFanout([]Sink{bad, nil, good}, WithErrorHandler(func(err error, ev pipeline.ProgressEvent) {
		failures++
		assert.EqualError(t, err, "disk full")
	}))
	assert.Equal(t, 2, f.Len())

	emit := f.Emit(context.Background())
	for _, ev := range runEvents() {
		emit(ev)
	}

	assert.Len(t, good.events, len(runEvents()))
	assert.Equal(t, len(runEvents()), failures)

	err := f.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
	assert.True(t, bad.closed)
	assert.True(t, good.closed)
	require.NoError(t, f.Close())

	err = f.Publish(context.Background(), event(pipeline.EventResult, "late"))
	assert.True(t, types.HasCode(err, ErrCodeSinkClosed))
}
