package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Bootstrap and lifecycle errors. None of these are retryable: they signal
// broken configuration or a programming error in the host application.
const (
	// ErrCodeConfigParse indicates a configuration layer exists but is malformed.
	ErrCodeConfigParse ErrorCode = "CONFIG_PARSE_ERROR"
	// ErrCodeInvalidConfig indicates the merged configuration is unusable
	// (missing port, section failing validation).
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeLifecycleOrder indicates a lifecycle transition was requested out of order.
	ErrCodeLifecycleOrder ErrorCode = "LIFECYCLE_ORDER_ERROR"
	// ErrCodeProviderFailure indicates a provider's register or boot callback failed.
	ErrCodeProviderFailure ErrorCode = "PROVIDER_FAILURE"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
