package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// MockEmbedder produces deterministic embeddings derived from a SHA-256 of
// the text. Individual texts can be pinned to explicit vectors.
type MockEmbedder struct {
	mu         sync.Mutex
	dimensions int
	pinned     map[string][]float64
	embedError error
	calls      int
	health     types.HealthStatus
}

// NewMockEmbedder creates a mock producing vectors of the given size.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{
		dimensions: dimensions,
		pinned:     make(map[string][]float64),
		health:     types.Healthy("mock embedder"),
	}
}

// Pin makes Embed(text) return vec.
func (m *MockEmbedder) Pin(text string, vec []float64) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[text] = vec
	return m
}

// SetEmbedError makes every call fail with err.
func (m *MockEmbedder) SetEmbedError(err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedError = err
	return m
}

// SetHealthStatus configures what Health returns.
func (m *MockEmbedder) SetHealthStatus(status types.HealthStatus) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = status
	return m
}

// Embed returns the pinned or hash-derived vector for text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.embedError != nil {
		return nil, m.embedError
	}
	return m.vectorFor(text), nil
}

// EmbedBatch embeds each text in turn.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.embedError != nil {
		return nil, m.embedError
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *MockEmbedder) vectorFor(text string) []float64 {
	if vec, ok := m.pinned[text]; ok {
		return append([]float64(nil), vec...)
	}

	hash := sha256.Sum256([]byte(text))
	rng := rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(hash[:8]))))

	vec := make([]float64, m.dimensions)
	var norm float64
	for i := range vec {
		vec[i] = rng.Float64()*2 - 1
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Model returns "mock-embedder".
func (m *MockEmbedder) Model() string {
	return "mock-embedder"
}

// Health returns the configured status.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// Calls returns how many embed calls were made.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
