package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// EmbeddedStore is an in-memory brute-force store.
type EmbeddedStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Record
	closed  bool
}

// NewEmbeddedStore creates an empty in-memory store.
func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{records: make(map[string]Record)}
}

// Put inserts record if its ID is new.
func (s *EmbeddedStore) Put(ctx context.Context, record Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, types.NewError(ErrCodeVectorStoreUnavailable, "vector store is closed")
	}
	if _, exists := s.records[record.ID]; exists {
		return false, nil
	}

	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	return true, nil
}

// Search ranks every record by cosine similarity.
func (s *EmbeddedStore) Search(ctx context.Context, query Query) ([]Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(ErrCodeVectorStoreUnavailable, "vector store is closed")
	}

	candidates := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		candidates = append(candidates, s.records[id])
	}
	return rank(query, candidates), nil
}

// Get retrieves a record by ID.
func (s *EmbeddedStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, types.NewError(ErrCodeVectorNotFound, fmt.Sprintf("vector record not found: %s", id))
	}
	return &record, nil
}

// Count returns the number of records matching filters.
func (s *EmbeddedStore) Count(ctx context.Context, filters map[string]any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if matchesFilters(rec, filters) {
			n++
		}
	}
	return n, nil
}

// Health reports the record count.
func (s *EmbeddedStore) Health(ctx context.Context) types.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.Unhealthy("embedded vector store is closed")
	}
	return types.Healthy(fmt.Sprintf("embedded vector store operational with %d records", len(s.records)))
}

// Close drops all records.
func (s *EmbeddedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	s.order = nil
	return nil
}
