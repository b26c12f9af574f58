package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/cosyframework/cosy/component"
	apperrors "github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/server/endpoint"
	"github.com/cosyframework/cosy/server/middleware"
)

func newTestServer(checker endpoint.HealthChecker) *Server {
	s := New(Config{Host: "127.0.0.1"}, nil)
	s.ApplyMiddleware(nil)
	s.RegisterDefaultEndpoints(endpoint.ServiceInfo{
		Service:     "cosy-test",
		AppID:       "app-1",
		Environment: "testing",
		Components:  func() []component.Description { return []component.Description{s.Describe()} },
	}, checker)
	return s
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return body
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(nil)
	ctx := context.Background()

	if err := s.Serve(ctx, 0); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	addr := s.Addr()
	if addr == "" {
		t.Fatal("expected bound address")
	}

	resp, err := http.Get("http://" + addr + "/liveness")
	if err != nil {
		t.Fatalf("GET /liveness: %v", err)
	}
	body := decodeBody(t, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["status"] != "alive" {
		t.Errorf("unexpected liveness response %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request ID header from middleware")
	}

	if err := s.Serve(ctx, 0); err == nil {
		t.Error("expected error when serving twice")
	}

	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.Addr() != "" {
		t.Error("expected no address after shutdown")
	}
	if _, err := http.Get("http://" + addr + "/liveness"); err == nil {
		t.Error("expected connection failure after shutdown")
	}
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown must be a no-op, got %v", err)
	}
}

func TestServeBindFailure(t *testing.T) {
	first := newTestServer(nil)
	if err := first.Serve(context.Background(), 0); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer first.Shutdown(context.Background())

	_, portStr, _ := net.SplitHostPort(first.Addr())
	port, _ := strconv.Atoi(portStr)
	second := newTestServer(nil)
	err := second.Serve(context.Background(), port)
	if err == nil {
		second.Shutdown(context.Background())
		t.Fatal("expected bind error on a port in use")
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"no components", nil, http.StatusOK, "healthy"},
		{"degraded", []component.Health{{Name: "cache", Status: component.StatusDegraded}}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{{Name: "db", Status: component.StatusUnhealthy}}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(func(ctx context.Context) []component.Health { return tc.components })
			rr := httptest.NewRecorder()
			s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if body := decodeBody(t, rr.Body); body["status"] != tc.wantStatus {
				t.Errorf("expected status %q, got %v", tc.wantStatus, body["status"])
			}
		})
	}
}

func TestReadinessWhileDraining(t *testing.T) {
	s := newTestServer(nil)

	rr := httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readiness", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rr.Code)
	}

	s.draining.Store(true)
	rr = httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readiness", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while draining, got %d", rr.Code)
	}
}

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(nil)
	rr := httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))

	body := decodeBody(t, rr.Body)
	if body["service"] != "cosy-test" || body["app_id"] != "app-1" || body["environment"] != "testing" {
		t.Errorf("unexpected info %v", body)
	}
	build, ok := body["build"].(map[string]any)
	if !ok || build["framework"] != "cosy" {
		t.Errorf("expected build info, got %v", body["build"])
	}
	if comps, ok := body["components"].([]any); !ok || len(comps) != 1 {
		t.Errorf("expected one component description, got %v", body["components"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(nil)
	rr := httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	body := decodeBody(t, rr.Body)
	if _, ok := body["goroutines"]; !ok {
		t.Errorf("expected goroutine count, got %v", body)
	}
}

func TestNoRouteReturnsAppError(t *testing.T) {
	s := newTestServer(nil)
	rr := httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	body := decodeBody(t, rr.Body)
	errBody, _ := body["error"].(map[string]any)
	if errBody["code"] != string(apperrors.ErrCodeNotFound) {
		t.Errorf("unexpected error body %v", body)
	}
}

func TestRespondWithErrorPlainError(t *testing.T) {
	s := New(Config{}, nil)
	s.Engine().GET("/fail", func(c *gin.Context) {
		RespondWithError(c, errors.New("db down"))
	})
	rr := httptest.NewRecorder()
	s.Engine().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "db down") {
		t.Error("internal error details must not leak to clients")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.ReadTimeout != 15*time.Second || cfg.ShutdownTimeout != 5*time.Second || cfg.MaxBodySize != "10MB" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}

	cfg.ReadTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative timeout to fail validation")
	}
}
