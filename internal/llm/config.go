package llm

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// ProviderType names an LLM backend.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
	ProviderMock      ProviderType = "mock"
)

// ProviderConfig describes how to reach one named model.
// APIKey falls back to the backend's conventional environment variable.
type ProviderConfig struct {
	Type        ProviderType `mapstructure:"type" yaml:"type" validate:"required,oneof=openai anthropic google ollama mock"`
	Model       string       `mapstructure:"model" yaml:"model" validate:"required"`
	APIKey      string       `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string       `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Temperature float64      `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int          `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`

	// Responses scripts the mock backend.
	Responses []string `mapstructure:"responses" yaml:"responses"`
}

// Validate performs the checks that struct tags cannot express.
func (p *ProviderConfig) Validate() error {
	switch p.Type {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOllama, ProviderMock:
	case "":
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "provider type cannot be empty")
	default:
		return types.NewError(
			types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("invalid provider type '%s', must be one of: openai, anthropic, google, ollama, mock", p.Type),
		)
	}

	if strings.TrimSpace(p.Model) == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "model cannot be empty")
	}

	if p.Temperature < 0 || p.Temperature > 2 {
		return types.NewError(
			types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("temperature must be between 0 and 2, got %f", p.Temperature),
		)
	}

	return nil
}

// GetBaseURL returns the base URL for a provider, with defaults for known providers.
func (p *ProviderConfig) GetBaseURL() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}

	switch p.Type {
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderGoogle:
		return "https://generativelanguage.googleapis.com/v1beta"
	case ProviderOllama:
		return "http://localhost:11434"
	default:
		return ""
	}
}

// NormalizeProviderName normalizes provider names for lookup.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
