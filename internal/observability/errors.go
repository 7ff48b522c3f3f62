package observability

import "github.com/zero-day-ai/text2cypher/internal/types"

// Observability error codes
const (
	ErrCodeExporterConnection  types.ErrorCode = "OBSERVABILITY_EXPORTER_CONNECTION"
	ErrCodeMetricsRegistration types.ErrorCode = "OBSERVABILITY_METRICS_REGISTRATION"
	ErrCodeShutdownTimeout     types.ErrorCode = "OBSERVABILITY_SHUTDOWN_TIMEOUT"
	ErrCodeInvalidConfig       types.ErrorCode = "OBSERVABILITY_INVALID_CONFIG"
)

// NewExporterConnectionError creates an error for an exporter that could
// not be reached or built.
func NewExporterConnectionError(endpoint string, cause error) error {
	return &types.Error{
		Code:      ErrCodeExporterConnection,
		Message:   "failed to connect to exporter at " + endpoint,
		Retryable: true,
		Cause:     cause,
	}
}
