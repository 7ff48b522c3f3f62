// Package embedder turns question text into vectors for semantic example
// retrieval.
package embedder

import (
	"context"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Embedder generates embedding vectors from text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Model returns the name of the embedding model.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}
