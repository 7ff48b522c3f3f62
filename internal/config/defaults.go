package config

import (
	"path/filepath"
	"time"

	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/observability"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := DefaultHomeDir()

	return &Config{
		Logging: observability.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Tracing: observability.TracingConfig{
			Enabled:     false,
			Provider:    "otlp",
			ServiceName: "text2cypher",
			SampleRate:  1.0,
		},
		Metrics: observability.MetricsConfig{
			Enabled:  false,
			Provider: "prometheus",
			Port:     9090,
		},
		Pipeline: PipelineConfig{
			Variant:        "retry_check",
			Timeout:        60 * time.Second,
			RowLimit:       100,
			TopK:           5,
			MaxConcurrency: 4,
			ExcludeLabels:  []string{"Actor", "Director"},
		},
		LLMs:      make(map[string]llm.ProviderConfig),
		Databases: make(map[string]DatabaseConfig),
		Fewshot: FewshotConfig{
			Store:      StoreNone,
			SQLitePath: filepath.Join(homeDir, "examples.db"),
		},
		Events: EventsConfig{
			Format:  "text",
			Verbose: true,
			NATS: NATSConfig{
				Subject:       "text2cypher.events",
				MaxReconnects: 60,
				ReconnectWait: 2 * time.Second,
			},
		},
	}
}
