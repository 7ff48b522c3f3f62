package fewshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Label values under which recorded examples are filed.
const (
	LabelFewshot = "Fewshot"
	LabelMissing = "Missing"
)

// DefaultTopK is the number of examples a semantic lookup returns.
const DefaultTopK = 7

// Example is a prior question and the Cypher that answered it.
type Example struct {
	Question  string    `json:"question" yaml:"question"`
	Cypher    string    `json:"cypher" yaml:"cypher"`
	Embedding []float64 `json:"embedding,omitempty" yaml:"-"`
	Success   *bool     `json:"success,omitempty" yaml:"success,omitempty"`
}

// Entry is a finished run offered for write-back.
type Entry struct {
	Question string
	Cypher   string
	Model    string
	Database string
	Success  bool
}

// Key is the composite identity used to deduplicate write-back.
func (e Entry) Key() string {
	return Key(e.Question, e.Model, e.Database)
}

// Label returns LabelFewshot for successful entries and LabelMissing otherwise.
func (e Entry) Label() string {
	if e.Success {
		return LabelFewshot
	}
	return LabelMissing
}

// Key hashes question, model and database into a stable identifier.
func Key(question, model, database string) string {
	sum := sha256.Sum256([]byte(question + "\x00" + model + "\x00" + database))
	return hex.EncodeToString(sum[:])
}

// Retriever returns examples for a question against a database. An empty
// result means "generate without guidance"; retrievers never fail.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, question, database string) []Example
}

// Recorder is implemented by retrievers that can learn from finished runs.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// ShortIdentity returns the last '_' or '/' separated segment of alias.
func ShortIdentity(alias string) string {
	alias = strings.TrimRight(strings.TrimSpace(alias), "_/")
	if i := strings.LastIndexAny(alias, "_/"); i >= 0 {
		return alias[i+1:]
	}
	return alias
}

// Format renders examples as prompt text, one question/Cypher pair per block.
func Format(examples []Example) string {
	if len(examples) == 0 {
		return ""
	}

	var b strings.Builder
	for i, ex := range examples {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Question: ")
		b.WriteString(ex.Question)
		b.WriteString("\nCypher: ")
		b.WriteString(ex.Cypher)
	}
	return b.String()
}
