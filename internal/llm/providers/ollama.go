package providers

import (
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

func newOllamaClient(cfg llm.ProviderConfig) (*ollama.LLM, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(cfg.GetBaseURL()),
		ollama.WithModel(cfg.Model),
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}
	return client, nil
}

// NewOllamaProvider creates a provider for a local Ollama server.
func NewOllamaProvider(cfg llm.ProviderConfig) (*LangchainProvider, error) {
	client, err := newOllamaClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewLangchainProvider("ollama", client, cfg), nil
}
