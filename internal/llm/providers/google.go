package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/zero-day-ai/text2cypher/internal/llm"
)

func newGoogleClient(ctx context.Context, cfg llm.ProviderConfig, extra ...googleai.Option) (*googleai.GoogleAI, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewProviderUnauthorizedError("google", nil)
	}

	opts := []googleai.Option{
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(cfg.Model),
	}
	opts = append(opts, extra...)

	client, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, llm.TranslateError("google", err)
	}
	return client, nil
}

// NewGoogleProvider creates a provider for Google's Gemini models.
func NewGoogleProvider(ctx context.Context, cfg llm.ProviderConfig) (*LangchainProvider, error) {
	client, err := newGoogleClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewLangchainProvider("google", client, cfg), nil
}
