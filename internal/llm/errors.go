package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// LLM error codes
const (
	// Provider errors
	ErrProviderNotFound     types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnavailable  types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"

	// Request errors
	ErrInvalidRequest types.ErrorCode = "LLM_INVALID_REQUEST"

	// Completion errors
	ErrCompletionFailed types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrStreamingFailed  types.ErrorCode = "LLM_STREAMING_FAILED"
	ErrEmptyResponse    types.ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrTimeoutExceeded  types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
	ErrContextCanceled  types.ErrorCode = "LLM_CONTEXT_CANCELED"

	// Network errors
	ErrNetworkFailed types.ErrorCode = "LLM_NETWORK_FAILED"
)

// IsRetryable determines if an error is transient. The pipeline never
// retries model calls itself; callers wrapping a provider may.
func IsRetryable(err error) bool {
	var e *types.Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Retryable {
		return true
	}

	switch e.Code {
	case ErrNetworkFailed, ErrProviderRateLimited, ErrProviderUnavailable, ErrTimeoutExceeded:
		return true
	default:
		return false
	}
}

func NewProviderNotFoundError(providerName string) *types.Error {
	return types.NewError(ErrProviderNotFound, "provider not found: "+providerName)
}

func NewProviderUnavailableError(providerName string, cause error) *types.Error {
	return &types.Error{
		Code:      ErrProviderUnavailable,
		Message:   "provider temporarily unavailable: " + providerName,
		Retryable: true,
		Cause:     cause,
	}
}

func NewProviderUnauthorizedError(providerName string, cause error) *types.Error {
	return &types.Error{
		Code:    ErrProviderUnauthorized,
		Message: fmt.Sprintf("provider '%s' authentication failed", providerName),
		Cause:   cause,
	}
}

func NewRateLimitError(providerName string, cause error) *types.Error {
	return &types.Error{
		Code:      ErrProviderRateLimited,
		Message:   "rate limit exceeded for provider: " + providerName,
		Retryable: true,
		Cause:     cause,
	}
}

func NewInvalidRequestError(message string) *types.Error {
	return types.NewError(ErrInvalidRequest, message)
}

func NewCompletionError(message string, cause error) *types.Error {
	return types.WrapError(ErrCompletionFailed, message, cause)
}

func NewNetworkError(message string, cause error) *types.Error {
	return &types.Error{
		Code:      ErrNetworkFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// TranslateError maps a backend error onto an LLM error code. Context
// cancellation and deadline errors keep their cause so callers can still
// match them with errors.Is.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var e *types.Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return types.WrapError(ErrContextCanceled, provider+": request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return &types.Error{Code: ErrTimeoutExceeded, Message: provider + ": deadline exceeded", Retryable: true, Cause: err}
	}

	lowerMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") || strings.Contains(lowerMsg, "api key"):
		return NewProviderUnauthorizedError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return NewRateLimitError(provider, err)
	case strings.Contains(lowerMsg, "timeout"):
		return &types.Error{Code: ErrTimeoutExceeded, Message: provider + ": timeout", Retryable: true, Cause: err}
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(provider+": network failure", err)
	default:
		return NewProviderUnavailableError(provider, err)
	}
}
