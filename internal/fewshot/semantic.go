package fewshot

import (
	"context"
	"log/slog"

	"github.com/zero-day-ai/text2cypher/internal/embedder"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// SemanticRetriever looks examples up by embedding similarity and records
// finished runs back into the same store.
type SemanticRetriever struct {
	store    Store
	embedder embedder.Embedder
	topK     int
	logger   *slog.Logger
}

// SemanticOption configures a SemanticRetriever.
type SemanticOption func(*SemanticRetriever)

// WithTopK overrides DefaultTopK.
func WithTopK(k int) SemanticOption {
	return func(r *SemanticRetriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *slog.Logger) SemanticOption {
	return func(r *SemanticRetriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewSemanticRetriever creates a retriever over store using emb for questions.
func NewSemanticRetriever(store Store, emb embedder.Embedder, opts ...SemanticOption) *SemanticRetriever {
	r := &SemanticRetriever{
		store:    store,
		embedder: emb,
		topK:     DefaultTopK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SemanticRetriever) Name() string { return "semantic" }

// Retrieve returns the closest examples for database. Embedding and store
// failures are logged and produce an empty result.
func (r *SemanticRetriever) Retrieve(ctx context.Context, question, database string) []Example {
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		r.logger.WarnContext(ctx, "question embedding failed, continuing without examples",
			"database", database,
			"error", err)
		return []Example{}
	}

	examples, err := r.store.Search(ctx, embedding, database, r.topK)
	if err != nil {
		r.logger.WarnContext(ctx, "example search failed, continuing without examples",
			"database", database,
			"error", err)
		return []Example{}
	}

	r.logger.DebugContext(ctx, "retrieved examples",
		"database", database,
		"count", len(examples))
	return examples
}

// Record embeds the entry's question and stores it. Repeated entries with
// the same key are ignored.
func (r *SemanticRetriever) Record(ctx context.Context, entry Entry) error {
	embedding, err := r.embedder.Embed(ctx, entry.Question)
	if err != nil {
		return types.WrapError(ErrCodeStoreFailed, "failed to embed example question", err)
	}

	created, err := r.store.Put(ctx, entry, embedding)
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "recorded example",
		"database", entry.Database,
		"model", entry.Model,
		"label", entry.Label(),
		"created", created)
	return nil
}

var (
	_ Retriever = (*SemanticRetriever)(nil)
	_ Recorder  = (*SemanticRetriever)(nil)
)
