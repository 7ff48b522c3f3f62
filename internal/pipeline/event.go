package pipeline

import (
	"time"

	json "github.com/goccy/go-json"
)

// EventType names a progress event.
type EventType string

const (
	EventCypherGeneration     EventType = "cypher_generation"
	EventCypherExecutionError EventType = "cypher_execution_error"
	EventCypherCorrection     EventType = "cypher_correction"
	EventEvaluation           EventType = "evaluation"
	EventDatabaseOutput       EventType = "database_output"
	EventAnswerDelta          EventType = "answer_delta"
	EventResult               EventType = "result"
	EventError                EventType = "error"
)

var eventLabels = map[EventType]string{
	EventCypherGeneration:     "Cypher generation",
	EventCypherExecutionError: "Cypher execution error",
	EventCypherCorrection:     "Cypher correction",
	EventEvaluation:           "Evaluation",
	EventDatabaseOutput:       "Database output",
	EventAnswerDelta:          "Final answer",
	EventResult:               "Result",
	EventError:                "Error",
}

// Label returns the human-readable label for t.
func (t EventType) Label() string {
	if l, ok := eventLabels[t]; ok {
		return l
	}
	return string(t)
}

// Terminal reports whether t ends a run.
func (t EventType) Terminal() bool {
	return t == EventResult || t == EventError
}

// ProgressEvent is one step of a run as seen by a client.
type ProgressEvent struct {
	Type      EventType  `json:"event_type"`
	Label     string     `json:"label"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
	Result    *RunResult `json:"result,omitempty"`

	// RunID correlates events of one run inside the process.
	RunID string `json:"-"`
}

func newEvent(runID string, t EventType, message string) ProgressEvent {
	return ProgressEvent{
		Type:      t,
		Label:     t.Label(),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
	}
}

// JSON encodes the event in its wire form.
func (e ProgressEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}
