package providers

import (
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

// NewAnthropicProvider creates a provider for Anthropic's Claude models.
func NewAnthropicProvider(cfg llm.ProviderConfig) (*LangchainProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewProviderUnauthorizedError("anthropic", nil)
	}

	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
		anthropic.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}

	return NewLangchainProvider("anthropic", client, cfg), nil
}
