// Package prompt holds the system/user message templates used by each model
// round trip of the pipeline, and renders them with text/template.
package prompt

import (
	"strings"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

// Prompt is a named pair of system and user templates.
type Prompt struct {
	// ID is the unique identifier for this prompt (required)
	ID string `json:"id" yaml:"id"`

	// Description provides context about what this prompt does
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// System is the system message template
	System string `json:"system" yaml:"system"`

	// User is the user message template (required)
	User string `json:"user" yaml:"user"`

	// Variables declares what the templates read. Templates referencing an
	// undeclared variable fail at render time.
	Variables []VariableDef `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Validate checks required fields.
func (p *Prompt) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return NewInvalidPromptError("prompt ID cannot be empty")
	}
	if strings.TrimSpace(p.User) == "" {
		return NewInvalidPromptError("prompt '" + p.ID + "' has an empty user template")
	}
	for _, v := range p.Variables {
		if v.Name == "" {
			return NewInvalidPromptError("prompt '" + p.ID + "' declares a variable without a name")
		}
	}
	return nil
}

// Rendered is a prompt with its variables substituted.
type Rendered struct {
	System string
	User   string
}

// Messages converts r into chat messages, skipping an empty system part.
func (r Rendered) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, 2)
	if strings.TrimSpace(r.System) != "" {
		msgs = append(msgs, llm.NewSystemMessage(r.System))
	}
	return append(msgs, llm.NewUserMessage(r.User))
}
