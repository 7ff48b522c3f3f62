package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{"stderr text", LoggingConfig{Level: "info", Format: "text", Output: "stderr"}, false},
		{"file json", LoggingConfig{Level: "debug", Format: "JSON", Output: "/var/log/t2c.log"}, false},
		{"bad level", LoggingConfig{Level: "loud", Format: "text", Output: "stderr"}, true},
		{"bad format", LoggingConfig{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"relative file", LoggingConfig{Level: "info", Format: "text", Output: "t2c.log"}, true},
		{"no output", LoggingConfig{Level: "info", Format: "text"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr bool
	}{
		{"disabled", TracingConfig{Provider: "zipkin"}, false},
		{"otlp", TracingConfig{Enabled: true, Provider: "otlp", Endpoint: "localhost:4317", SampleRate: 1}, false},
		{"noop without endpoint", TracingConfig{Enabled: true, Provider: "noop"}, false},
		{"otlp without endpoint", TracingConfig{Enabled: true, Provider: "otlp", SampleRate: 1}, true},
		{"unknown provider", TracingConfig{Enabled: true, Provider: "jaeger", Endpoint: "x"}, true},
		{"sample rate", TracingConfig{Enabled: true, Provider: "otlp", Endpoint: "x", SampleRate: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MetricsConfig
		wantErr bool
	}{
		{"disabled", MetricsConfig{}, false},
		{"prometheus", MetricsConfig{Enabled: true, Provider: "prometheus", Port: 9464}, false},
		{"prometheus bad port", MetricsConfig{Enabled: true, Provider: "prometheus", Port: 70000}, true},
		{"otlp", MetricsConfig{Enabled: true, Provider: "otlp", Endpoint: "localhost:4317"}, false},
		{"otlp no endpoint", MetricsConfig{Enabled: true, Provider: "otlp"}, true},
		{"unknown", MetricsConfig{Enabled: true, Provider: "statsd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
