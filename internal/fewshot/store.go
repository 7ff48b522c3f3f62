package fewshot

import (
	"context"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Store persists embedded examples and answers similarity lookups.
type Store interface {
	// Search returns up to k successful examples recorded for database,
	// most similar to embedding first.
	Search(ctx context.Context, embedding []float64, database string, k int) ([]Example, error)

	// Put stores entry unless an entry with the same Key exists. It reports
	// whether anything was written.
	Put(ctx context.Context, entry Entry, embedding []float64) (bool, error)

	Health(ctx context.Context) types.HealthStatus
	Close(ctx context.Context) error
}
