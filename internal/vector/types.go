package vector

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Record is a stored vector with metadata.
type Record struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float64      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate ensures the record has valid fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return types.NewError(ErrCodeVectorStoreFailed, "vector record ID cannot be empty")
	}
	if r.Content == "" {
		return types.NewError(ErrCodeVectorStoreFailed, "vector record content cannot be empty")
	}
	if len(r.Embedding) == 0 {
		return types.NewError(ErrCodeVectorStoreFailed, "vector record embedding cannot be empty")
	}
	return nil
}

// Query is a similarity search request.
type Query struct {
	Embedding []float64      `json:"embedding"`
	TopK      int            `json:"top_k"`
	Filters   map[string]any `json:"filters,omitempty"`
	MinScore  float64        `json:"min_score,omitempty"`
}

// Validate ensures the query has valid fields.
func (q *Query) Validate() error {
	if len(q.Embedding) == 0 {
		return types.NewError(ErrCodeVectorSearchFailed, "vector query must have an embedding")
	}
	if q.TopK <= 0 {
		return types.NewError(ErrCodeVectorSearchFailed,
			fmt.Sprintf("vector query top_k must be greater than 0, got %d", q.TopK))
	}
	if q.MinScore < -1 || q.MinScore > 1 {
		return types.NewError(ErrCodeVectorSearchFailed,
			fmt.Sprintf("vector query min_score must be between -1 and 1, got %f", q.MinScore))
	}
	return nil
}

// Result is a record with its similarity score.
type Result struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}

// cosineSimilarity computes (a · b) / (||a|| * ||b||). Mismatched lengths
// and zero vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// matchesFilters applies AND-equality over metadata. Values are compared
// by their string form so JSON round-trips do not change the outcome.
func matchesFilters(record Record, filters map[string]any) bool {
	for key, expected := range filters {
		actual, ok := record.Metadata[key]
		if !ok || fmt.Sprint(actual) != fmt.Sprint(expected) {
			return false
		}
	}
	return true
}

// rank scores candidates (already in insertion order) and keeps the top k.
func rank(query Query, candidates []Record) []Result {
	results := make([]Result, 0, len(candidates))
	for _, rec := range candidates {
		if len(rec.Embedding) != len(query.Embedding) || !matchesFilters(rec, query.Filters) {
			continue
		}
		score := cosineSimilarity(query.Embedding, rec.Embedding)
		if score >= query.MinScore {
			results = append(results, Result{Record: rec, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > query.TopK {
		results = results[:query.TopK]
	}
	return results
}
