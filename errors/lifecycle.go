package errors

import (
	"fmt"
	"net/http"
)

// ConfigParse creates an error for a configuration layer whose content could
// not be decoded.
func ConfigParse(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConfigParse, Message: fmt.Sprintf("Configuration file %s is malformed.", path),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"path": path}, Cause: cause,
	}
}

// InvalidConfig creates an error for a resolved configuration value that
// cannot be used.
func InvalidConfig(key, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("Invalid configuration for %s: %s", key, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key},
	}
}

// LifecycleOrder creates an error for an operation invoked in a state that
// does not allow it, e.g. a second boot or a start before boot.
func LifecycleOrder(op, state string) *AppError {
	return &AppError{
		Code: ErrCodeLifecycleOrder, Message: fmt.Sprintf("Cannot %s while application is %s.", op, state),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"operation": op, "state": state},
	}
}

// ProviderFailure creates an error for a provider whose register or boot
// callback returned an error.
func ProviderFailure(provider, phase string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderFailure, Message: fmt.Sprintf("Provider %s failed during %s.", provider, phase),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"provider": provider, "phase": phase}, Cause: cause,
	}
}

// IsConfigParse reports whether err is (or wraps) a configuration parse error.
func IsConfigParse(err error) bool { return IsCode(err, ErrCodeConfigParse) }

// IsLifecycleOrder reports whether err is (or wraps) a lifecycle order error.
func IsLifecycleOrder(err error) bool { return IsCode(err, ErrCodeLifecycleOrder) }

// IsProviderFailure reports whether err is (or wraps) a provider failure.
func IsProviderFailure(err error) bool { return IsCode(err, ErrCodeProviderFailure) }

// IsInvalidConfig reports whether err is (or wraps) an invalid configuration error.
func IsInvalidConfig(err error) bool { return IsCode(err, ErrCodeInvalidConfig) }
