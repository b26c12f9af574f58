package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/cosyframework/cosy/component"
	apperrors "github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/observability"
	"github.com/cosyframework/cosy/server/endpoint"
	"github.com/cosyframework/cosy/server/middleware"
)

// Server is the application's HTTP server: a gin engine mounted on a
// ServeMux, wrapped in h2c so HTTP/2 cleartext works on the same port.
// It satisfies application.Server.
type Server struct {
	engine      *gin.Engine
	mux         *http.ServeMux
	config      Config
	log         *logger.Logger
	middlewares []middleware.Middleware

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	draining   atomic.Bool
}

// New creates a Server. No middleware or endpoints are installed yet; see
// ApplyMiddleware and RegisterDefaultEndpoints.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.NoRoute(func(c *gin.Context) {
		RespondWithError(c, apperrors.NotFound("Route "+c.Request.URL.Path))
	})

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	return &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("http"),
	}
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handle mounts an http.Handler at pattern next to the gin engine.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", logger.Fields("pattern", pattern))
}

// Use appends middleware around the whole server. It only takes effect for
// middleware added before Serve.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw...)
}

// ApplyMiddleware installs the standard stack: recovery, request ID,
// telemetry, CORS (when origins are configured), body size limit and
// request logging.
func (s *Server) ApplyMiddleware(metrics *observability.Metrics) {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Telemetry(metrics),
	)
	if len(s.config.CORS.AllowedOrigins) > 0 {
		s.Use(middleware.CORS(s.config.CORS))
	}
	s.Use(
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// RegisterDefaultEndpoints registers /health, /liveness, /readiness, /info
// and /metrics.
func (s *Server) RegisterDefaultEndpoints(info endpoint.ServiceInfo, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(info.Service, checker))
	s.engine.GET("/liveness", endpoint.Liveness(info.Service))
	s.engine.GET("/readiness", endpoint.Readiness(info.Service, checker, s.Draining))
	s.engine.GET("/info", endpoint.Info(info))
	s.engine.GET("/metrics", endpoint.Metrics())
}

// Serve binds host:port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a
// goroutine until Shutdown. Port 0 binds an ephemeral port (see Addr).
func (s *Server) Serve(ctx context.Context, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already serving on %s", s.listener.Addr())
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(port))
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", addr, err)
	}

	handler := middleware.Chain(s.middlewares...)(s.mux)
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          s.config.IdleTimeout,
	}
	srv := &http.Server{
		Handler:           h2c.NewHandler(handler, h2s),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	s.httpServer = srv
	s.listener = listener
	s.draining.Store(false)

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("HTTP server listening", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the configured shutdown timeout. It is a no-op when the server
// is not serving.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	s.draining.Store(true)
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServer = nil
	s.listener = nil
	if err != nil {
		s.log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("HTTP server shut down", logger.DurationFields("shutdown", time.Since(start)))
	return nil
}

// Addr returns the bound address, or "" when not serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Draining reports whether Shutdown has begun.
func (s *Server) Draining() bool {
	return s.draining.Load()
}

// Describe reports the server for the info endpoint.
func (s *Server) Describe() component.Description {
	d := component.Description{Name: "HTTP Server", Type: "server", Details: "h2c"}
	if addr := s.Addr(); addr != "" {
		d.Details = addr + " h2c"
		if _, port, err := net.SplitHostPort(addr); err == nil {
			d.Port, _ = strconv.Atoi(port)
		}
	}
	return d
}
