package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

// NewProvider creates an LLM provider from its configuration.
func NewProvider(ctx context.Context, cfg llm.ProviderConfig) (llm.LLMProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case llm.ProviderGoogle:
		return NewGoogleProvider(ctx, cfg)
	case llm.ProviderOllama:
		return NewOllamaProvider(cfg)
	case llm.ProviderMock:
		responses := cfg.Responses
		if len(responses) == 0 {
			responses = []string{"MATCH (n) RETURN count(n) AS count"}
		}
		return NewMockProvider(responses), nil
	default:
		return nil, llm.NewInvalidRequestError(fmt.Sprintf("unknown provider type: %s", cfg.Type))
	}
}

// NewEmbeddingClient returns a langchaingo embedding client for backends
// that expose an embeddings endpoint. cfg.Model names the embedding model.
func NewEmbeddingClient(ctx context.Context, cfg llm.ProviderConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Type {
	case llm.ProviderOpenAI:
		return newOpenAIClient(cfg, openai.WithEmbeddingModel(cfg.Model))
	case llm.ProviderOllama:
		return newOllamaClient(cfg)
	case llm.ProviderGoogle:
		return newGoogleClient(ctx, cfg, googleai.WithDefaultEmbeddingModel(cfg.Model))
	default:
		return nil, llm.NewInvalidRequestError(fmt.Sprintf("provider type %s has no embedding endpoint", cfg.Type))
	}
}
