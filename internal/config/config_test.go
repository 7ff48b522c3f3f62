package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)

	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)

	assert.Equal(t, "retry_check", cfg.Pipeline.Variant)
	assert.Nil(t, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Pipeline.Timeout)
	assert.Equal(t, 100, cfg.Pipeline.RowLimit)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, []string{"Actor", "Director"}, cfg.Pipeline.ExcludeLabels)

	assert.Empty(t, cfg.LLMs)
	assert.Empty(t, cfg.Databases)
	assert.Equal(t, StoreNone, cfg.Fewshot.Store)
	assert.Contains(t, cfg.Fewshot.SQLitePath, ".text2cypher")
	assert.Nil(t, cfg.Embedder)

	assert.Equal(t, "text", cfg.Events.Format)
	assert.Equal(t, "text2cypher.events", cfg.Events.NATS.Subject)

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("T2C_TEST_NEO4J_PASSWORD", "s3cret")
	t.Setenv("T2C_TEST_OPENAI_KEY", "sk-test")

	path := writeConfig(t, `
logging:
  level: debug
  format: text
pipeline:
  variant: naive_retry
  max_retries: 3
  timeout: 30s
  row_limit: 25
  max_concurrency: 8
  rate_limit: 2.5
  exclude_labels: [Person]
llms:
  GPT:
    type: openai
    model: gpt-4o
    api_key: ${T2C_TEST_OPENAI_KEY}
  local:
    type: mock
    model: scripted
    responses:
      - "MATCH (n) RETURN n"
databases:
  movies:
    uri: bolt://localhost:7687
    username: neo4j
    password: ${T2C_TEST_NEO4J_PASSWORD}
    alias: neo4j_movies
fewshot:
  store: neo4j
  database: movies
  keyed_file: /tmp/examples.yaml
embedder:
  type: mock
  model: hash
events:
  format: json
  nats:
    url: nats://localhost:4222
`)

	cfg, err := NewConfigLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output, "omitted keys keep their defaults")

	assert.Equal(t, "naive_retry", cfg.Pipeline.Variant)
	require.NotNil(t, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 3, *cfg.Pipeline.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.Timeout)
	assert.Equal(t, 25, cfg.Pipeline.RowLimit)
	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 8, cfg.Pipeline.MaxConcurrency)
	assert.InDelta(t, 2.5, cfg.Pipeline.RateLimit, 1e-9)
	assert.Equal(t, []string{"Person"}, cfg.Pipeline.ExcludeLabels, "lists replace the default")

	gpt, err := cfg.LLM("GPT")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, gpt.Type)
	assert.Equal(t, "sk-test", gpt.APIKey)

	local, err := cfg.LLM("local")
	require.NoError(t, err)
	assert.Equal(t, []string{"MATCH (n) RETURN n"}, local.Responses)

	movies, err := cfg.Database("movies")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", movies.Password)
	assert.Equal(t, "neo4j_movies", cfg.Alias("movies"))

	assert.Equal(t, StoreNeo4j, cfg.Fewshot.Store)
	require.NotNil(t, cfg.Embedder)
	assert.Equal(t, llm.ProviderMock, cfg.Embedder.Type)

	assert.Equal(t, "json", cfg.Events.Format)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATS.URL)
	assert.Equal(t, "text2cypher.events", cfg.Events.NATS.Subject)
}

func TestLoadLeavesUnsetVariables(t *testing.T) {
	path := writeConfig(t, `
databases:
  movies:
    uri: bolt://localhost:7687
    username: neo4j
    password: ${T2C_TEST_UNSET_VARIABLE}
`)

	cfg, err := NewConfigLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${T2C_TEST_UNSET_VARIABLE}", cfg.Databases["movies"].Password)
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewConfigLoader(NewValidator())
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := loader.Load(path)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_NOT_FOUND))

	cfg, err := loader.LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Pipeline, cfg.Pipeline)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "pipeline: [unterminated\n")

	_, err := NewConfigLoader(nil).Load(path)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_PARSE_FAILED))
}

func TestLoadInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  variant: exhaustive
  max_concurrency: 0
`)

	_, err := NewConfigLoader(nil).Load(path)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_VALIDATION_FAILED))
	assert.Contains(t, err.Error(), "pipeline.variant must be one of")
	assert.Contains(t, err.Error(), "pipeline.max_concurrency must be at least 1")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "unknown llm type",
			mutate: func(c *Config) {
				c.LLMs["gpt"] = llm.ProviderConfig{Type: "watson", Model: "x"}
			},
			wantErr: "llms[gpt].type must be one of",
		},
		{
			name: "llm without model",
			mutate: func(c *Config) {
				c.LLMs["gpt"] = llm.ProviderConfig{Type: llm.ProviderOpenAI}
			},
			wantErr: "llms[gpt].model is required",
		},
		{
			name: "database without uri",
			mutate: func(c *Config) {
				c.Databases["movies"] = DatabaseConfig{Username: "neo4j"}
			},
			wantErr: "databases[movies].uri is required",
		},
		{
			name: "neo4j store without database",
			mutate: func(c *Config) {
				c.Fewshot.Store = StoreNeo4j
				c.Embedder = &llm.ProviderConfig{Type: llm.ProviderMock, Model: "hash"}
			},
			wantErr: "fewshot.database is required",
		},
		{
			name: "neo4j store on unknown database",
			mutate: func(c *Config) {
				c.Fewshot.Store = StoreNeo4j
				c.Fewshot.Database = "examples"
				c.Embedder = &llm.ProviderConfig{Type: llm.ProviderMock, Model: "hash"}
			},
			wantErr: `fewshot.database "examples" is not a configured database`,
		},
		{
			name: "sqlite store without embedder",
			mutate: func(c *Config) {
				c.Fewshot.Store = StoreSQLite
			},
			wantErr: "embedder is required when fewshot.store is 'sqlite'",
		},
		{
			name: "sqlite store without path",
			mutate: func(c *Config) {
				c.Fewshot.Store = StoreSQLite
				c.Fewshot.SQLitePath = ""
				c.Embedder = &llm.ProviderConfig{Type: llm.ProviderMock, Model: "hash"}
			},
			wantErr: "fewshot.sqlite_path is required",
		},
		{
			name: "memory store with embedder",
			mutate: func(c *Config) {
				c.Fewshot.Store = StoreMemory
				c.Embedder = &llm.ProviderConfig{Type: llm.ProviderMock, Model: "hash"}
			},
		},
		{
			name: "negative max retries",
			mutate: func(c *Config) {
				n := -1
				c.Pipeline.MaxRetries = &n
			},
			wantErr: "pipeline.max_retries must be at least 0",
		},
		{
			name: "bad event format",
			mutate: func(c *Config) {
				c.Events.Format = "xml"
			},
			wantErr: "events.format must be one of",
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Logging.Level = "loud"
			},
			wantErr: "loud",
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
			},
			wantErr: "endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := NewValidator().Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, types.HasCode(err, types.CONFIG_VALIDATION_FAILED))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, NewValidator().Validate(nil))
}

func TestPipelineSettings(t *testing.T) {
	one, no := 1, false

	tests := []struct {
		name string
		cfg  PipelineConfig
		want pipeline.Settings
	}{
		{
			name: "empty variant uses retry_check",
			cfg:  PipelineConfig{},
			want: pipeline.VariantRetryCheck.Settings(),
		},
		{
			name: "variant preset",
			cfg:  PipelineConfig{Variant: "naive"},
			want: pipeline.Settings{MaxRetries: 0},
		},
		{
			name: "explicit values override the preset",
			cfg:  PipelineConfig{Variant: "retry_check", MaxRetries: &one, WriteBack: &no},
			want: pipeline.Settings{MaxRetries: 1, Evaluate: true, WriteBack: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Settings()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PipelineConfig{Variant: "bogus"}.Settings()
	assert.Error(t, err)

	overrides := PipelineConfig{MaxRetries: &one}.Overrides()
	assert.Equal(t, pipeline.Settings{MaxRetries: 1}, overrides.Apply(pipeline.VariantNaive.Settings()))
	assert.Nil(t, overrides.Evaluate)
}

func TestDatabaseGraphConfig(t *testing.T) {
	db := DatabaseConfig{
		URI:               "neo4j://graph:7687",
		Username:          "reader",
		Password:          "pw",
		Database:          "movies",
		ConnectionTimeout: 5 * time.Second,
	}

	gc := db.GraphConfig()
	assert.Equal(t, "neo4j://graph:7687", gc.URI)
	assert.Equal(t, "reader", gc.Username)
	assert.Equal(t, "movies", gc.Database)
	assert.Equal(t, 5*time.Second, gc.ConnectionTimeout)
	assert.Equal(t, 50, gc.MaxConnectionPoolSize, "unset fields keep client defaults")
	assert.NoError(t, gc.Validate())
}

func TestLookups(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Databases["movies"] = DatabaseConfig{URI: "bolt://x", Username: "neo4j"}

	_, err := cfg.LLM("missing")
	assert.True(t, types.HasCode(err, types.RESOURCE_NOT_FOUND))

	_, err = cfg.Database("Movies")
	assert.NoError(t, err)
	assert.Equal(t, "movies", cfg.Alias("Movies"), "alias falls back to the key")
	assert.Equal(t, "unknown", cfg.Alias("unknown"))
}

func TestInterpolateString(t *testing.T) {
	t.Setenv("T2C_TEST_HOST", "graph.local")

	tests := []struct {
		in, want string
	}{
		{"bolt://${T2C_TEST_HOST}:7687", "bolt://graph.local:7687"},
		{"${T2C_TEST_MISSING}", "${T2C_TEST_MISSING}"},
		{"plain", "plain"},
		{"${T2C_TEST_HOST}/${T2C_TEST_HOST}", "graph.local/graph.local"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, interpolateString(tt.in))
	}
}

func TestFormatFieldPath(t *testing.T) {
	assert.Equal(t, "pipeline.max_concurrency", formatFieldPath("Config.pipeline.max_concurrency"))
	assert.Equal(t, "llms[gpt].model", formatFieldPath("Config.llms[gpt].model"))
	assert.Equal(t, "core.parallel_limit", formatFieldPath("Config.Core.ParallelLimit"))
	assert.Equal(t, "Config", formatFieldPath("Config"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/examples.db", want: filepath.Join(home, "examples.db")},
		{in: "/var/lib/./text2cypher/", want: "/var/lib/text2cypher"},
		{in: "data/~/x", want: "data/~/x"},
		{in: "stderr", want: "stderr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := expandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := NewConfigLoader(nil).Load(writeConfig(t, `
fewshot:
  keyed_file: ~/examples.yaml
prompts:
  directory: ~/prompts
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "examples.yaml"), cfg.Fewshot.KeyedFile)
	assert.Equal(t, filepath.Join(home, "prompts"), cfg.Prompts.Directory)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}
