package prompt

import (
	"fmt"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Prompt error codes
const (
	ErrCodePromptNotFound      types.ErrorCode = "PROMPT_NOT_FOUND"
	ErrCodePromptAlreadyExists types.ErrorCode = "PROMPT_ALREADY_EXISTS"
	ErrCodeInvalidPrompt       types.ErrorCode = "INVALID_PROMPT"

	ErrCodeTemplateRender  types.ErrorCode = "TEMPLATE_RENDER_FAILED"
	ErrCodeMissingVariable types.ErrorCode = "MISSING_REQUIRED_VARIABLE"
	ErrCodeInvalidTemplate types.ErrorCode = "INVALID_TEMPLATE_SYNTAX"

	ErrCodeYAMLParse      types.ErrorCode = "YAML_PARSE_FAILED"
	ErrCodeYAMLValidation types.ErrorCode = "YAML_VALIDATION_FAILED"
)

// NewPromptNotFoundError creates an error for when a prompt is not found
func NewPromptNotFoundError(id string) error {
	return types.NewError(ErrCodePromptNotFound, fmt.Sprintf("prompt not found: %s", id))
}

// NewPromptAlreadyExistsError creates an error for when a prompt already exists
func NewPromptAlreadyExistsError(id string) error {
	return types.NewError(ErrCodePromptAlreadyExists, fmt.Sprintf("prompt already exists: %s", id))
}

// NewInvalidPromptError creates an error for invalid prompt definitions
func NewInvalidPromptError(reason string) error {
	return types.NewError(ErrCodeInvalidPrompt, fmt.Sprintf("invalid prompt: %s", reason))
}

// NewTemplateRenderError creates an error for template rendering failures
func NewTemplateRenderError(templateID string, cause error) error {
	return types.WrapError(
		ErrCodeTemplateRender,
		fmt.Sprintf("failed to render template '%s'", templateID),
		cause,
	)
}

// NewMissingVariableError creates an error for missing required template variables
func NewMissingVariableError(promptID, varName string) error {
	return types.NewError(
		ErrCodeMissingVariable,
		fmt.Sprintf("prompt '%s' requires variable '%s'", promptID, varName),
	)
}

// NewInvalidTemplateError creates an error for invalid template syntax
func NewInvalidTemplateError(templateID string, cause error) error {
	return types.WrapError(
		ErrCodeInvalidTemplate,
		fmt.Sprintf("invalid template syntax in '%s'", templateID),
		cause,
	)
}

// NewYAMLParseError creates an error for YAML parsing failures
func NewYAMLParseError(filePath string, cause error) error {
	return types.WrapError(
		ErrCodeYAMLParse,
		fmt.Sprintf("failed to parse YAML file '%s'", filePath),
		cause,
	)
}

// NewYAMLValidationError creates an error for YAML validation failures
func NewYAMLValidationError(filePath, reason string) error {
	return types.NewError(
		ErrCodeYAMLValidation,
		fmt.Sprintf("YAML validation failed for '%s': %s", filePath, reason),
	)
}
