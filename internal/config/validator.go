package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// ConfigValidator validates configuration values.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// validatorImpl implements ConfigValidator using go-playground/validator.
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a new ConfigValidator instance.
func NewValidator() ConfigValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &validatorImpl{
		validate: validate,
	}
}

// Validate runs the struct tag rules, then the cross-section rules that
// tags cannot express. All problems are reported together.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var problems []string

	if err := v.validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		for _, e := range validationErrs {
			problems = append(problems, formatValidationError(e))
		}
	}

	for _, check := range []func() error{
		cfg.Logging.Validate,
		cfg.Tracing.Validate,
		cfg.Metrics.Validate,
	} {
		if err := check(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	problems = append(problems, validateFewshot(cfg)...)

	if len(problems) > 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - ")))
	}
	return nil
}

func validateFewshot(cfg *Config) []string {
	var problems []string
	fs := cfg.Fewshot

	switch fs.Store {
	case StoreNeo4j:
		if fs.Database == "" {
			problems = append(problems, "fewshot.database is required when fewshot.store is 'neo4j'")
		} else if _, ok := cfg.Databases[normalizeKey(fs.Database)]; !ok {
			problems = append(problems, fmt.Sprintf("fewshot.database %q is not a configured database", fs.Database))
		}
	case StoreSQLite:
		if fs.SQLitePath == "" {
			problems = append(problems, "fewshot.sqlite_path is required when fewshot.store is 'sqlite'")
		}
	}

	if fs.Store != StoreNone && fs.Store != "" && cfg.Embedder == nil {
		problems = append(problems, fmt.Sprintf("embedder is required when fewshot.store is '%s'", fs.Store))
	}
	return problems
}

// formatValidationError formats a single validation error with field path and details.
func formatValidationError(e validator.FieldError) string {
	fieldPath := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldPath)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", fieldPath, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", fieldPath, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", fieldPath, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got: %v)", fieldPath, e.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", fieldPath, e.Tag(), e.Value())
	}
}

// formatFieldPath drops the root struct name from a validator namespace.
// Example: "Config.pipeline.max_concurrency" -> "pipeline.max_concurrency".
// Fields without a mapstructure tag are converted to snake_case.
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return namespace
	}

	result := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		result = append(result, camelToSnake(part))
	}

	return strings.Join(result, ".")
}

// camelToSnake converts CamelCase to snake_case.
func camelToSnake(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
