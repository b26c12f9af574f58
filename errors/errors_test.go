package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigParse(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := ConfigParse("config/app.json", cause)
	if err.Code != ErrCodeConfigParse {
		t.Errorf("expected %s, got %s", ErrCodeConfigParse, err.Code)
	}
	if err.Details["path"] != "config/app.json" {
		t.Errorf("expected path detail, got %v", err.Details["path"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Retryable {
		t.Error("config parse errors must not be retryable")
	}
}

func TestIsHelpersThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"config parse", ConfigParse("a.json", nil), IsConfigParse},
		{"lifecycle order", LifecycleOrder("boot", "booted"), IsLifecycleOrder},
		{"provider failure", ProviderFailure("db", "boot", fmt.Errorf("x")), IsProviderFailure},
		{"invalid config", InvalidConfig("app.port", "missing"), IsInvalidConfig},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("bootstrap: %w", tc.err)
			if !tc.check(wrapped) {
				t.Errorf("expected helper to match wrapped %v", wrapped)
			}
		})
	}
}

func TestIsCodeDoesNotCrossMatch(t *testing.T) {
	err := LifecycleOrder("start", "created")
	if IsConfigParse(err) {
		t.Error("lifecycle error must not match config parse")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeLifecycleOrder) {
		t.Error("plain error must not match any code")
	}
}

func TestProviderFailureMessage(t *testing.T) {
	err := ProviderFailure("cache", "register", fmt.Errorf("dial refused"))
	msg := err.Error()
	if !strings.Contains(msg, "PROVIDER_FAILURE") || !strings.Contains(msg, "cache") || !strings.Contains(msg, "dial refused") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", InvalidConfig("app.port", "missing"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError")
	}
	if appErr.Details["key"] != "app.port" {
		t.Errorf("expected key detail, got %v", appErr.Details["key"])
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected no AppError for plain error")
	}
}

func TestToResponse(t *testing.T) {
	resp := LifecycleOrder("boot", "booted").ToResponse()
	if resp.Error.Code != ErrCodeLifecycleOrder {
		t.Errorf("expected code in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["operation"] != "boot" {
		t.Errorf("expected operation detail, got %v", resp.Error.Details)
	}
}
