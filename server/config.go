package server

import (
	"time"

	"github.com/cosyframework/cosy/server/middleware"
	"github.com/cosyframework/cosy/validation"
)

// Config holds HTTP server configuration, read from the "server" section.
// The listen port is not part of it: the application passes the port it
// resolved from app.port to Serve.
type Config struct {
	Host            string                `mapstructure:"host"`
	ReadTimeout     time.Duration         `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration         `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration         `mapstructure:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration         `mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBodySize     string                `mapstructure:"max_body_size"`
	CORS            middleware.CORSConfig `mapstructure:"cors"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
