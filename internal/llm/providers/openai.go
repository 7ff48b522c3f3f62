package providers

import (
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

func newOpenAIClient(cfg llm.ProviderConfig, extra ...openai.Option) (*openai.LLM, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewProviderUnauthorizedError("openai", nil)
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	client, err := openai.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}
	return client, nil
}

// NewOpenAIProvider creates a provider for OpenAI-compatible chat endpoints.
func NewOpenAIProvider(cfg llm.ProviderConfig) (*LangchainProvider, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewLangchainProvider("openai", client, cfg), nil
}
