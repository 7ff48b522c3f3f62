package embedder

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// LangchainEmbedder adapts a langchaingo embeddings.Embedder.
type LangchainEmbedder struct {
	inner embeddings.Embedder
	model string
	dims  atomic.Int64
}

// NewLangchainEmbedder wraps client; model is reported by Model().
func NewLangchainEmbedder(client embeddings.EmbedderClient, model string) (*LangchainEmbedder, error) {
	inner, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, types.WrapError(ErrCodeInvalidConfig, "failed to create embedder", err)
	}
	return &LangchainEmbedder{inner: inner, model: model}, nil
}

// Embed embeds a single query text.
func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, types.WrapError(ErrCodeEmbeddingFailed, "embedding request failed", err)
	}
	if len(vec) == 0 {
		return nil, types.NewError(ErrCodeEmbeddingFailed, "embedding response was empty")
	}
	e.dims.Store(int64(len(vec)))
	return widen(vec), nil
}

// EmbedBatch embeds texts in one request where the backend allows it.
func (e *LangchainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, types.WrapError(ErrCodeEmbeddingBatchFailed, "batch embedding request failed", err)
	}
	if len(vecs) != len(texts) {
		return nil, types.NewError(ErrCodeEmbeddingBatchFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(vecs)))
	}

	out := make([][]float64, len(vecs))
	for i, v := range vecs {
		out[i] = widen(v)
	}
	return out, nil
}

// Model returns the configured embedding model name.
func (e *LangchainEmbedder) Model() string {
	return e.model
}

// Health embeds a short test string.
func (e *LangchainEmbedder) Health(ctx context.Context) types.HealthStatus {
	if _, err := e.Embed(ctx, "health check"); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy(fmt.Sprintf("%s reachable (%d dims)", e.model, e.dims.Load()))
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
