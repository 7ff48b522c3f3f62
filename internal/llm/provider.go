package llm

import (
	"context"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// LLMProvider is the model-call abstraction used by every pipeline step.
// Implementations wrap a concrete backend (OpenAI, Anthropic, Ollama, Gemini)
// or a scripted mock.
type LLMProvider interface {
	// Name returns the provider name (e.g. "openai", "ollama").
	Name() string

	// Complete sends a request and blocks until the whole response is available.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream sends a request and emits chunks as they are produced.
	// The channel is closed when generation finishes, fails, or ctx is done.
	// A failure mid-stream is delivered as a chunk with Error set.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// Health checks connectivity to the backend.
	Health(ctx context.Context) types.HealthStatus
}
