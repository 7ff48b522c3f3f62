package graph

import (
	"context"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/schema"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// GraphClient provides graph database operations.
// Implementations must be safe for concurrent use.
type GraphClient interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources held by the client.
	Close(ctx context.Context) error

	// Health returns the current health of the connection.
	Health(ctx context.Context) types.HealthStatus

	// Query runs cypher in a read transaction.
	Query(ctx context.Context, cypher string, params map[string]any, opts ...QueryOption) (QueryResult, error)

	// Write runs cypher in a write transaction.
	Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// Schema introspects node labels, their properties, and relationship triples.
	Schema(ctx context.Context) (schema.Raw, error)
}

// QueryResult is the outcome of a Cypher statement.
type QueryResult struct {
	// Records are rows keyed by column, with driver values converted to
	// plain Go maps, slices, and scalars.
	Records []map[string]any

	// Columns in result order.
	Columns []string

	// Truncated is set when a row limit stopped collection early.
	Truncated bool

	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	PropertiesSet        int
}

type queryOptions struct {
	rowLimit int
}

// QueryOption tunes a single Query call.
type QueryOption func(*queryOptions)

// WithRowLimit stops collecting after n rows. n <= 0 means no limit.
func WithRowLimit(n int) QueryOption {
	return func(o *queryOptions) {
		o.rowLimit = n
	}
}

func applyQueryOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GraphClientConfig contains configuration for graph database clients.
type GraphClientConfig struct {
	// URI of the database, e.g. "bolt://host:7687", "neo4j+s://host".
	URI string

	Username string
	Password string

	// Database name. Empty uses the server default.
	Database string

	// MaxConnectionPoolSize limits pooled connections. Zero uses the driver default.
	MaxConnectionPoolSize int

	ConnectionTimeout       time.Duration
	MaxTransactionRetryTime time.Duration

	// ConnectAttempts bounds the backoff loop in Connect.
	ConnectAttempts int
}

// DefaultConfig returns a GraphClientConfig with sensible defaults.
func DefaultConfig() GraphClientConfig {
	return GraphClientConfig{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
		ConnectAttempts:         5,
	}
}

// Validate checks if the configuration is valid.
func (c GraphClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Username cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}
