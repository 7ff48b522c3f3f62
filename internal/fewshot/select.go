package fewshot

import (
	"context"
	"log/slog"

	"github.com/zero-day-ai/text2cypher/internal/embedder"
)

// Sources are the candidate backends for Select.
type Sources struct {
	Store    Store
	Embedder embedder.Embedder
	Keyed    *KeyedRetriever
	TopK     int
	Logger   *slog.Logger
}

// Select chooses the semantic strategy when a store and embedder are
// configured and the store reports healthy, otherwise the keyed table.
// The choice is made once.
func Select(ctx context.Context, src Sources) Retriever {
	logger := src.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if src.Store != nil && src.Embedder != nil {
		status := src.Store.Health(ctx)
		if status.IsHealthy() {
			logger.InfoContext(ctx, "using semantic example retrieval", "top_k", src.TopK)
			return NewSemanticRetriever(src.Store, src.Embedder, WithTopK(src.TopK), WithLogger(logger))
		}
		logger.WarnContext(ctx, "example store unavailable, falling back to keyed examples",
			"status", status.State,
			"message", status.Message)
	}

	if src.Keyed != nil {
		logger.InfoContext(ctx, "using keyed example retrieval", "databases", src.Keyed.Databases())
		return src.Keyed
	}
	return NewKeyedRetriever(nil)
}
