package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/text2cypher/internal/graph"
	"github.com/zero-day-ai/text2cypher/internal/llm"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/prompt"
	"github.com/zero-day-ai/text2cypher/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitGenerationFailed indicates no usable query or answer was produced
	ExitGenerationFailed = 2
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitLLMError indicates a model backend error
	ExitLLMError = 11
	// ExitDatabaseError indicates a graph database error
	ExitDatabaseError = 12
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError handles an error and returns the appropriate exit code
// It also prints the error message to the command's error output
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		return cliErr.Code
	}

	cmd.PrintErrln("Error:", err)
	return ExitCodeFor(err)
}

var (
	configCodes = []types.ErrorCode{
		types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED,
		types.CONFIG_NOT_FOUND,
		types.RESOURCE_NOT_FOUND,
		pipeline.ErrCodeConfig,
		prompt.ErrCodePromptNotFound,
		prompt.ErrCodeInvalidPrompt,
		prompt.ErrCodeInvalidTemplate,
		llm.ErrInvalidRequest,
		graph.ErrCodeGraphInvalidConfig,
	}
	databaseCodes = []types.ErrorCode{
		pipeline.ErrCodeSchemaUnavailable,
		graph.ErrCodeGraphConnectionFailed,
		graph.ErrCodeGraphConnectionClosed,
		graph.ErrCodeGraphQueryFailed,
		graph.ErrCodeGraphWriteFailed,
		graph.ErrCodeGraphSchemaFailed,
	}
	llmCodes = []types.ErrorCode{
		llm.ErrProviderNotFound,
		llm.ErrProviderInitFailed,
		llm.ErrProviderUnavailable,
		llm.ErrProviderUnauthorized,
		llm.ErrProviderRateLimited,
		llm.ErrCompletionFailed,
		llm.ErrStreamingFailed,
		llm.ErrNetworkFailed,
	}
)

// ExitCodeFor maps a coded error to an exit code. Run timeouts and
// cancellations win over the error that ended the run.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case types.HasCode(err, pipeline.ErrCodeRunTimeout):
		return ExitTimeout
	case types.HasCode(err, pipeline.ErrCodeRunCancelled):
		return ExitCancelled
	case hasAny(err, configCodes):
		return ExitConfigError
	case hasAny(err, databaseCodes):
		return ExitDatabaseError
	case types.HasCode(err, pipeline.ErrCodeGenerationFailed):
		return ExitGenerationFailed
	case hasAny(err, llmCodes):
		return ExitLLMError
	default:
		return ExitError
	}
}

func hasAny(err error, codes []types.ErrorCode) bool {
	for _, code := range codes {
		if types.HasCode(err, code) {
			return true
		}
	}
	return false
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag
// This is used for panic recovery to determine if stack traces should be shown
func IsVerbose() bool {
	if os.Getenv("TEXT2CYPHER_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
