// Package vector stores embedded records and answers cosine top-k queries.
// It backs the local semantic example store.
package vector

import (
	"context"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Store provides vector similarity search over records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts record unless a record with the same ID exists. It reports
	// whether a new record was created; existing records are left untouched.
	Put(ctx context.Context, record Record) (bool, error)

	// Search returns the TopK records most similar to the query embedding,
	// by descending cosine similarity. Ties keep insertion order.
	Search(ctx context.Context, query Query) ([]Result, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Count returns the number of records matching filters.
	Count(ctx context.Context, filters map[string]any) (int, error)

	// Health returns the health status of the store.
	Health(ctx context.Context) types.HealthStatus

	// Close releases all resources held by the store.
	Close() error
}
