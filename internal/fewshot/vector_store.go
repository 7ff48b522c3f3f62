package fewshot

import (
	"context"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/types"
	"github.com/zero-day-ai/text2cypher/internal/vector"
)

// VectorStore keeps examples in a local vector.Store.
type VectorStore struct {
	store vector.Store
}

// NewVectorStore wraps store.
func NewVectorStore(store vector.Store) *VectorStore {
	return &VectorStore{store: store}
}

// Search filters on database and the Fewshot label.
func (s *VectorStore) Search(ctx context.Context, embedding []float64, database string, k int) ([]Example, error) {
	results, err := s.store.Search(ctx, vector.Query{
		Embedding: embedding,
		TopK:      k,
		MinScore:  -1,
		Filters: map[string]any{
			"database": database,
			"label":    LabelFewshot,
		},
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeStoreFailed, "example search failed", err)
	}

	examples := make([]Example, 0, len(results))
	for _, r := range results {
		ok := true
		cypher, _ := r.Record.Metadata["cypher"].(string)
		examples = append(examples, Example{
			Question:  r.Record.Content,
			Cypher:    cypher,
			Embedding: r.Record.Embedding,
			Success:   &ok,
		})
	}
	return examples, nil
}

// Put inserts entry under its composite key.
func (s *VectorStore) Put(ctx context.Context, entry Entry, embedding []float64) (bool, error) {
	created, err := s.store.Put(ctx, vector.Record{
		ID:        entry.Key(),
		Content:   entry.Question,
		Embedding: embedding,
		Metadata: map[string]any{
			"cypher":   entry.Cypher,
			"model":    entry.Model,
			"database": entry.Database,
			"label":    entry.Label(),
		},
		CreatedAt: time.Now(),
	})
	if err != nil {
		return false, types.WrapError(ErrCodeStoreFailed, "example write failed", err)
	}
	return created, nil
}

func (s *VectorStore) Health(ctx context.Context) types.HealthStatus {
	return s.store.Health(ctx)
}

func (s *VectorStore) Close(ctx context.Context) error {
	return s.store.Close()
}
