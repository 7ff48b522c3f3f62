// Package config loads the text2cypher configuration file: named models and
// graph databases, pipeline settings, the example store and the
// observability stack.
package config

import (
	"fmt"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/observability"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Config is the root configuration structure.
//
// Map keys under llms and databases are case-insensitive and are stored
// lowercased.
type Config struct {
	Logging   observability.LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Tracing   observability.TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	Metrics   observability.MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Pipeline  PipelineConfig                `mapstructure:"pipeline" yaml:"pipeline"`
	LLMs      map[string]llm.ProviderConfig `mapstructure:"llms" yaml:"llms" validate:"dive"`
	Databases map[string]DatabaseConfig     `mapstructure:"databases" yaml:"databases" validate:"dive"`
	Fewshot   FewshotConfig                 `mapstructure:"fewshot" yaml:"fewshot"`
	Embedder  *llm.ProviderConfig           `mapstructure:"embedder" yaml:"embedder,omitempty"`
	Prompts   PromptsConfig                 `mapstructure:"prompts" yaml:"prompts"`
	Events    EventsConfig                  `mapstructure:"events" yaml:"events"`
}

// PipelineConfig holds the engine and batch settings. MaxRetries, Evaluate
// and WriteBack override the variant preset when set.
type PipelineConfig struct {
	Variant        string        `mapstructure:"variant" yaml:"variant" validate:"omitempty,oneof=naive naive_retry retry_check"`
	MaxRetries     *int          `mapstructure:"max_retries" yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	Evaluate       *bool         `mapstructure:"evaluate" yaml:"evaluate,omitempty"`
	WriteBack      *bool         `mapstructure:"write_back" yaml:"write_back,omitempty"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	RowLimit       int           `mapstructure:"row_limit" yaml:"row_limit" validate:"min=0"`
	TopK           int           `mapstructure:"top_k" yaml:"top_k" validate:"min=1,max=50"`
	MaxConcurrency int           `mapstructure:"max_concurrency" yaml:"max_concurrency" validate:"min=1,max=256"`
	RateLimit      float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=0"`
	RateBurst      int           `mapstructure:"rate_burst" yaml:"rate_burst" validate:"min=0"`
	ExcludeLabels  []string      `mapstructure:"exclude_labels" yaml:"exclude_labels"`
}

// Settings resolves the variant preset and applies the explicit overrides.
func (p PipelineConfig) Settings() (pipeline.Settings, error) {
	variant := pipeline.VariantRetryCheck
	if p.Variant != "" {
		v, err := pipeline.ParseVariant(p.Variant)
		if err != nil {
			return pipeline.Settings{}, err
		}
		variant = v
	}

	return p.Overrides().Apply(variant.Settings()), nil
}

// Overrides returns the explicitly configured settings.
func (p PipelineConfig) Overrides() pipeline.Overrides {
	return pipeline.Overrides{
		MaxRetries: p.MaxRetries,
		Evaluate:   p.Evaluate,
		WriteBack:  p.WriteBack,
	}
}

// DatabaseConfig is one named Neo4j connection.
type DatabaseConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username string `mapstructure:"username" yaml:"username" validate:"required"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`

	// Alias is the identity examples are stored and looked up under.
	// Empty uses the configuration key.
	Alias string `mapstructure:"alias" yaml:"alias"`

	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"min=0"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout" validate:"min=0"`
}

// GraphConfig converts to a client configuration, keeping the client
// defaults for unset fields.
func (d DatabaseConfig) GraphConfig() graph.GraphClientConfig {
	cfg := graph.DefaultConfig()
	cfg.URI = d.URI
	cfg.Username = d.Username
	cfg.Password = d.Password
	cfg.Database = d.Database
	if d.MaxConnectionPoolSize > 0 {
		cfg.MaxConnectionPoolSize = d.MaxConnectionPoolSize
	}
	if d.ConnectionTimeout > 0 {
		cfg.ConnectionTimeout = d.ConnectionTimeout
	}
	return cfg
}

// Example store types.
const (
	StoreNeo4j  = "neo4j"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// FewshotConfig selects where examples come from. The semantic stores need
// an embedder; the keyed file is the fallback.
type FewshotConfig struct {
	Store string `mapstructure:"store" yaml:"store" validate:"oneof=neo4j sqlite memory none"`

	// Database names the databases entry holding the neo4j store.
	Database string `mapstructure:"database" yaml:"database"`

	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	KeyedFile  string `mapstructure:"keyed_file" yaml:"keyed_file"`
}

// PromptsConfig points at user prompt overrides.
type PromptsConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// EventsConfig controls progress event output.
type EventsConfig struct {
	Format  string     `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	Verbose bool       `mapstructure:"verbose" yaml:"verbose"`
	NATS    NATSConfig `mapstructure:"nats" yaml:"nats"`
}

// NATSConfig enables publishing events to NATS when URL is set.
type NATSConfig struct {
	URL           string        `mapstructure:"url" yaml:"url"`
	Subject       string        `mapstructure:"subject" yaml:"subject"`
	Token         string        `mapstructure:"token" yaml:"token"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait" validate:"min=0"`
}

// LLM returns the named provider configuration.
func (c *Config) LLM(name string) (llm.ProviderConfig, error) {
	p, ok := c.LLMs[normalizeKey(name)]
	if !ok {
		return llm.ProviderConfig{}, types.NewError(types.RESOURCE_NOT_FOUND,
			fmt.Sprintf("llm %q is not configured", name))
	}
	return p, nil
}

// Database returns the named database configuration.
func (c *Config) Database(name string) (DatabaseConfig, error) {
	d, ok := c.Databases[normalizeKey(name)]
	if !ok {
		return DatabaseConfig{}, types.NewError(types.RESOURCE_NOT_FOUND,
			fmt.Sprintf("database %q is not configured", name))
	}
	return d, nil
}

// Alias returns the example identity of the named database.
func (c *Config) Alias(name string) string {
	if d, ok := c.Databases[normalizeKey(name)]; ok && d.Alias != "" {
		return d.Alias
	}
	return normalizeKey(name)
}
