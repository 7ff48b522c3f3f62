package embedder

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/llm/providers"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// New creates an embedder for cfg. The mock type needs no backend; the
// other types reuse the LLM provider clients' embedding endpoints.
func New(ctx context.Context, cfg llm.ProviderConfig) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, types.WrapError(ErrCodeInvalidConfig, "invalid embedder configuration", err)
	}

	if cfg.Type == llm.ProviderMock {
		return NewMockEmbedder(0), nil
	}

	client, err := providers.NewEmbeddingClient(ctx, cfg)
	if err != nil {
		return nil, types.WrapError(ErrCodeInvalidConfig, fmt.Sprintf("embedder %s/%s", cfg.Type, cfg.Model), err)
	}
	return NewLangchainEmbedder(client, cfg.Model)
}
