package pipeline

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Question is the user's input. It is not modified once a run starts.
type Question struct {
	Text    string         `json:"text" yaml:"text"`
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// FormatContext renders Context as sorted "key: value" lines, or "" when
// there is none.
func (q Question) FormatContext() string {
	if len(q.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q.Context))
	for k := range q.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %v", k, q.Context[k])
	}
	return b.String()
}

// Request is one run: a question plus the already resolved model and graph
// handles it runs against.
type Request struct {
	Question Question

	LLM   llm.LLMProvider
	Graph graph.GraphClient

	// ModelName and Database identify the handles for example write-back
	// and per-database example lookup.
	ModelName string
	Database  string

	// Variant overrides the engine's workflow settings when set.
	Variant Variant
}

// Validate checks that the request can run.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.Question.Text) == "":
		return types.NewError(ErrCodeConfig, "question cannot be empty")
	case r.LLM == nil:
		return types.NewError(ErrCodeConfig, "request has no LLM provider")
	case r.Graph == nil:
		return types.NewError(ErrCodeConfig, "request has no graph client")
	}
	if r.Variant != "" {
		if _, err := ParseVariant(string(r.Variant)); err != nil {
			return err
		}
	}
	return nil
}

// ExecutionResult is the outcome of one query attempt. Exactly one of
// Rows and Err is meaningful.
type ExecutionResult struct {
	Rows      []map[string]any
	Err       string
	Truncated bool
}

// Failed reports whether the store rejected the query.
func (r ExecutionResult) Failed() bool {
	return r.Err != ""
}

// Output renders the result as prompt context: the rows as JSON, or the
// error text for a failed attempt.
func (r ExecutionResult) Output() string {
	if r.Failed() {
		return r.Err
	}
	return FormatRows(r.Rows)
}

// FormatRows encodes rows as a JSON array.
func FormatRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return "[]"
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Verdict is the evaluator's judgement of an execution result.
type Verdict struct {
	Adequate bool
	Reason   string
}

// RunResult is the terminal artifact of a run.
type RunResult struct {
	Cypher   string `json:"cypher"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// IsOk reports whether an evaluation reads as approval: its first or last
// word is "Ok" or "Ok.". Any other phrasing, including "OK" or "Ok!", is a
// rejection.
// TODO: replace with a structured verdict once prompts can rely on JSON output.
func IsOk(evaluation string) bool {
	words := strings.Fields(evaluation)
	if len(words) == 0 {
		return false
	}
	isOk := func(w string) bool { return w == "Ok" || w == "Ok." }
	return isOk(words[0]) || isOk(words[len(words)-1])
}
