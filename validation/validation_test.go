package validation

import (
	"strings"
	"testing"

	"github.com/cosyframework/cosy/errors"
)

type listenConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		cfg     listenConfig
		wantErr string
	}{
		{"valid", listenConfig{Host: "0.0.0.0", Port: 8080}, ""},
		{"missing host", listenConfig{Port: 8080}, "host: is required"},
		{"port too large", listenConfig{Host: "h", Port: 70000}, "port: must be less than or equal to 65535"},
		{"bad mode", listenConfig{Host: "h", Mode: "loud"}, "mode: must be one of: debug release"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT AppError, got %v", err)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("ReadTimeout"); got != "read_timeout" {
		t.Errorf("expected read_timeout, got %q", got)
	}
}
