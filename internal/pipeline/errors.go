package pipeline

import (
	"context"
	"errors"

	"github.com/zero-day-ai/text2cypher/internal/prompt"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Pipeline error codes
const (
	ErrCodeGenerationFailed  types.ErrorCode = "PIPELINE_GENERATION_FAILED"
	ErrCodeConfig            types.ErrorCode = "PIPELINE_CONFIG_ERROR"
	ErrCodeSchemaUnavailable types.ErrorCode = "PIPELINE_SCHEMA_UNAVAILABLE"
	ErrCodeRunTimeout        types.ErrorCode = "RUN_TIMEOUT"
	ErrCodeRunCancelled      types.ErrorCode = "RUN_CANCELLED"
)

// ErrorKind groups terminal run errors.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindGeneration    ErrorKind = "generation"
	KindConfiguration ErrorKind = "configuration"
	KindTimeout       ErrorKind = "timeout"
	KindCancelled     ErrorKind = "cancelled"
)

var configurationCodes = []types.ErrorCode{
	ErrCodeConfig,
	ErrCodeSchemaUnavailable,
	prompt.ErrCodePromptNotFound,
	prompt.ErrCodeMissingVariable,
	prompt.ErrCodeInvalidPrompt,
	prompt.ErrCodeInvalidTemplate,
	prompt.ErrCodeTemplateRender,
}

// Classify maps a terminal run error to its kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	switch {
	case types.HasCode(err, ErrCodeRunTimeout):
		return KindTimeout
	case types.HasCode(err, ErrCodeRunCancelled):
		return KindCancelled
	}
	for _, code := range configurationCodes {
		if types.HasCode(err, code) {
			return KindConfiguration
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCancelled
	}
	return KindGeneration
}
