// Package resource turns the named models and databases of a Config into
// live handles, and assembles the engine and example retriever from the
// same configuration.
package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/zero-day-ai/text2cypher/internal/config"
	"github.com/zero-day-ai/text2cypher/internal/embedder"
	"github.com/zero-day-ai/text2cypher/internal/fewshot"
	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/llm/providers"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/prompt"
	"github.com/zero-day-ai/text2cypher/internal/types"
	"github.com/zero-day-ai/text2cypher/internal/vector"
)

// LLMFactory builds a provider from its configuration.
type LLMFactory func(ctx context.Context, cfg llm.ProviderConfig) (llm.LLMProvider, error)

// GraphFactory builds an unconnected graph client.
type GraphFactory func(cfg graph.GraphClientConfig) (graph.GraphClient, error)

// EmbedderFactory builds the example embedder.
type EmbedderFactory func(ctx context.Context, cfg llm.ProviderConfig) (embedder.Embedder, error)

// Manager lazily creates and caches one handle per configured name. It is
// safe for concurrent use.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	newLLM      LLMFactory
	newGraph    GraphFactory
	newEmbedder EmbedderFactory

	mu        sync.Mutex
	llms      map[string]llm.LLMProvider
	graphs    map[string]graph.GraphClient
	store     fewshot.Store
	retriever fewshot.Retriever
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLLMFactory replaces providers.NewProvider.
func WithLLMFactory(f LLMFactory) Option {
	return func(m *Manager) {
		m.newLLM = f
	}
}

// WithGraphFactory replaces the Neo4j client constructor.
func WithGraphFactory(f GraphFactory) Option {
	return func(m *Manager) {
		m.newGraph = f
	}
}

// WithEmbedderFactory replaces embedder.New.
func WithEmbedderFactory(f EmbedderFactory) Option {
	return func(m *Manager) {
		m.newEmbedder = f
	}
}

// NewManager creates a manager over cfg. Nothing is connected until first use.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:         cfg,
		logger:      slog.Default(),
		newLLM:      providers.NewProvider,
		newGraph:    newNeo4jClient,
		newEmbedder: embedder.New,
		llms:        make(map[string]llm.LLMProvider),
		graphs:      make(map[string]graph.GraphClient),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newNeo4jClient(cfg graph.GraphClientConfig) (graph.GraphClient, error) {
	return graph.NewNeo4jClient(cfg)
}

// LLM returns the provider configured under name.
func (m *Manager) LLM(ctx context.Context, name string) (llm.LLMProvider, error) {
	pc, err := m.cfg.LLM(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(name)
	if p, ok := m.llms[key]; ok {
		return p, nil
	}

	p, err := m.newLLM(ctx, pc)
	if err != nil {
		return nil, types.WrapError(types.RESOURCE_INIT_FAILED, fmt.Sprintf("failed to create llm %q", name), err)
	}
	m.llms[key] = p
	m.logger.DebugContext(ctx, "created llm provider", "name", key, "type", pc.Type, "model", pc.Model)
	return p, nil
}

// Graph returns the connected client configured under name.
func (m *Manager) Graph(ctx context.Context, name string) (graph.GraphClient, error) {
	dc, err := m.cfg.Database(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(name)
	if c, ok := m.graphs[key]; ok {
		return c, nil
	}

	c, err := m.connect(ctx, dc)
	if err != nil {
		return nil, types.WrapError(types.RESOURCE_INIT_FAILED, fmt.Sprintf("failed to connect database %q", name), err)
	}
	m.graphs[key] = c
	m.logger.DebugContext(ctx, "connected graph database", "name", key, "uri", dc.URI)
	return c, nil
}

func (m *Manager) connect(ctx context.Context, dc config.DatabaseConfig) (graph.GraphClient, error) {
	c, err := m.newGraph(dc.GraphConfig())
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Request resolves the named handles into a pipeline request.
func (m *Manager) Request(ctx context.Context, question pipeline.Question, llmName, dbName string, variant pipeline.Variant) (pipeline.Request, error) {
	provider, err := m.LLM(ctx, llmName)
	if err != nil {
		return pipeline.Request{}, err
	}
	client, err := m.Graph(ctx, dbName)
	if err != nil {
		return pipeline.Request{}, err
	}
	pc, err := m.cfg.LLM(llmName)
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Question:  question,
		LLM:       provider,
		Graph:     client,
		ModelName: pc.Model,
		Database:  m.cfg.Alias(dbName),
		Variant:   variant,
	}, nil
}

// Retriever selects the example source once and caches it. A store that
// cannot be opened is logged and the keyed table is used instead.
func (m *Manager) Retriever(ctx context.Context) (fewshot.Retriever, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retriever != nil {
		return m.retriever, nil
	}

	fc := m.cfg.Fewshot
	var keyed *fewshot.KeyedRetriever
	if fc.KeyedFile != "" {
		k, err := fewshot.LoadKeyedFile(fc.KeyedFile)
		if err != nil {
			return nil, err
		}
		keyed = k
	}

	src := fewshot.Sources{Keyed: keyed, TopK: m.cfg.Pipeline.TopK, Logger: m.logger}
	if fc.Store != config.StoreNone && fc.Store != "" && m.cfg.Embedder != nil {
		emb, err := m.newEmbedder(ctx, *m.cfg.Embedder)
		if err != nil {
			m.logger.WarnContext(ctx, "example embedder unavailable", "error", err)
		} else if store, err := m.openStore(ctx, fc); err != nil {
			m.logger.WarnContext(ctx, "example store unavailable", "store", fc.Store, "error", err)
		} else {
			m.store = store
			src.Store, src.Embedder = store, emb
		}
	}

	m.retriever = fewshot.Select(ctx, src)
	return m.retriever, nil
}

func (m *Manager) openStore(ctx context.Context, fc config.FewshotConfig) (fewshot.Store, error) {
	switch fc.Store {
	case config.StoreNeo4j:
		dc, err := m.cfg.Database(fc.Database)
		if err != nil {
			return nil, err
		}
		// The store owns its connection; query clients are closed separately.
		client, err := m.connect(ctx, dc)
		if err != nil {
			return nil, err
		}
		store, err := fewshot.NewNeo4jStore(ctx, client)
		if err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return store, nil
	case config.StoreSQLite:
		s, err := vector.NewSqliteStore(vector.SqliteConfig{DBPath: fc.SQLitePath, TableName: "fewshot"})
		if err != nil {
			return nil, err
		}
		return fewshot.NewVectorStore(s), nil
	case config.StoreMemory:
		return fewshot.NewVectorStore(vector.NewEmbeddedStore()), nil
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, fmt.Sprintf("unknown example store %q", fc.Store))
	}
}

// Recorder returns the example writer, or an error when examples come from
// the read-only keyed table.
func (m *Manager) Recorder(ctx context.Context) (fewshot.Recorder, error) {
	r, err := m.Retriever(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := r.(fewshot.Recorder)
	if !ok {
		return nil, types.NewError(types.RESOURCE_NOT_FOUND,
			fmt.Sprintf("example source %q does not accept new examples", r.Name()))
	}
	return rec, nil
}

// Engine builds an engine from the pipeline, prompts and fewshot sections.
// extra options are applied last.
func (m *Manager) Engine(ctx context.Context, extra ...pipeline.EngineOption) (*pipeline.Engine, error) {
	pc := m.cfg.Pipeline

	settings, err := pc.Settings()
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.NewDefaultRegistry(m.cfg.Prompts.Directory)
	if err != nil {
		return nil, err
	}
	retriever, err := m.Retriever(ctx)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.EngineOption{
		pipeline.WithSettings(settings),
		pipeline.WithOverrides(pc.Overrides()),
		pipeline.WithTimeout(pc.Timeout),
		pipeline.WithRowLimit(pc.RowLimit),
		pipeline.WithExcludeLabels(pc.ExcludeLabels...),
		pipeline.WithRetriever(retriever),
		pipeline.WithPrompts(prompts),
		pipeline.WithLogger(m.logger),
	}
	return pipeline.NewEngine(append(opts, extra...)...)
}

// Check is the outcome of checking one configured resource.
type Check struct {
	Kind   string             `json:"kind"`
	Name   string             `json:"name"`
	Status types.HealthStatus `json:"status"`
}

// Check tests every configured model and database, in name order.
func (m *Manager) Check(ctx context.Context) []Check {
	var checks []Check

	for _, name := range sortedKeys(m.cfg.LLMs) {
		status := types.Unhealthy("")
		if p, err := m.LLM(ctx, name); err != nil {
			status.Message = err.Error()
		} else {
			status = p.Health(ctx)
		}
		checks = append(checks, Check{Kind: "llm", Name: name, Status: status})
	}

	for _, name := range sortedKeys(m.cfg.Databases) {
		status := types.Unhealthy("")
		if c, err := m.Graph(ctx, name); err != nil {
			status.Message = err.Error()
		} else {
			status = c.Health(ctx)
		}
		checks = append(checks, Check{Kind: "database", Name: name, Status: status})
	}

	return checks
}

// Health aggregates Check: healthy when every resource is, unhealthy when
// none is or nothing is configured, degraded otherwise.
func (m *Manager) Health(ctx context.Context) types.HealthStatus {
	checks := m.Check(ctx)
	if len(checks) == 0 {
		return types.Unhealthy("no resources configured")
	}

	healthy := 0
	for _, c := range checks {
		if c.Status.IsHealthy() {
			healthy++
		}
	}

	switch healthy {
	case len(checks):
		return types.Healthy(fmt.Sprintf("all %d resources healthy", len(checks)))
	case 0:
		return types.Unhealthy(fmt.Sprintf("all %d resources unhealthy", len(checks)))
	default:
		return types.Degraded(fmt.Sprintf("%d/%d resources healthy", healthy, len(checks)))
	}
}

// Close releases every connection opened so far.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, c := range m.graphs {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database %s: %w", name, err))
		}
	}
	m.graphs = make(map[string]graph.GraphClient)

	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("example store: %w", err))
		}
		m.store = nil
		m.retriever = nil
	}
	return errors.Join(errs...)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
