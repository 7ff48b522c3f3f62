package observability

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stdout, stderr, or an absolute file path.
	Output string `yaml:"output" mapstructure:"output"`
}

// Validate checks level, format and output.
func (c *LoggingConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Format)) {
		return invalidConfig("invalid log format: %s (must be one of: json, text)", c.Format)
	}
	if c.Output == "" {
		return invalidConfig("log output is required")
	}
	output := strings.ToLower(c.Output)
	if output != "stdout" && output != "stderr" && !strings.HasPrefix(c.Output, "/") {
		return invalidConfig("invalid log output: %s (must be 'stdout', 'stderr', or an absolute file path)", c.Output)
	}
	return nil
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	Provider       string  `yaml:"provider" mapstructure:"provider"`
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName    string  `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string  `yaml:"service_version" mapstructure:"service_version"`
	SampleRate     float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	TLSCertFile    string  `yaml:"tls_cert_file" mapstructure:"tls_cert_file"`
	InsecureMode   bool    `yaml:"insecure_mode" mapstructure:"insecure_mode"`
}

// Validate checks the provider, sample rate and endpoint.
func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	provider := strings.ToLower(c.Provider)
	if !slices.Contains([]string{"otlp", "noop"}, provider) {
		return invalidConfig("invalid tracing provider: %s (must be one of: otlp, noop)", c.Provider)
	}
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return invalidConfig("invalid sample rate: %f (must be between 0.0 and 1.0)", c.SampleRate)
	}
	if provider != "noop" && c.Endpoint == "" {
		return invalidConfig("endpoint is required when tracing is enabled")
	}
	return nil
}

// MetricsConfig contains metrics export configuration.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Port is the scrape port for prometheus.
	Port int `yaml:"port" mapstructure:"port"`
	// Endpoint is the collector address for otlp.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// Validate checks the provider and its address.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch strings.ToLower(c.Provider) {
	case "prometheus":
		if c.Port < 1 || c.Port > 65535 {
			return invalidConfig("invalid port: %d (must be between 1 and 65535)", c.Port)
		}
	case "otlp":
		if c.Endpoint == "" {
			return invalidConfig("endpoint is required for the otlp metrics provider")
		}
	default:
		return invalidConfig("invalid metrics provider: %s (must be one of: prometheus, otlp)", c.Provider)
	}
	return nil
}

func invalidConfig(format string, args ...any) error {
	return types.NewError(ErrCodeInvalidConfig, fmt.Sprintf(format, args...))
}
