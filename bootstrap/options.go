package bootstrap

import (
	"io"
	"time"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/di"
	"github.com/cosyframework/cosy/logger"
)

// DefaultEnvFile is the dotenv file loaded before the environment is
// resolved.
const DefaultEnvFile = ".env"

// Options configures a Bootstrap. The zero value loads ./config with the
// environment taken from APP_ENV and serves the built-in HTTP server.
type Options struct {
	// Config is the initial configuration, merged below every file layer.
	Config map[string]any
	// ConfigPath is the directory holding app.<ext> and <env>.<ext>.
	ConfigPath string
	// Providers are instantiated once each, in order.
	Providers []application.Factory
	// Hooks, if set, are installed on the application before registration.
	Hooks *application.Hooks
	// Environment resolves the active environment; defaults to APP_ENV.
	Environment config.Environment
	// Formats lists the layer file extensions tried, in order. Defaults to json.
	Formats []string
	// EnvFile is a dotenv file loaded into the process environment when it
	// exists. Defaults to DefaultEnvFile; "-" disables it.
	EnvFile string
	// EnvPrefix enables an environment variable layer over the files,
	// e.g. "COSY" maps COSY_APP_PORT to app.port.
	EnvPrefix string
	// Server replaces the built-in HTTP server.
	Server application.Server
	// Container, if set, becomes the application's container. Services
	// bound in it before Start are visible to every provider.
	Container di.Container
	// Logger replaces the logger built from the "logging" section.
	Logger *logger.Logger
	// FileSystem is used for every file access; defaults to the OS.
	FileSystem config.FileSystem
	// GracefulTimeout bounds the application's Stop when waiting on signals.
	GracefulTimeout time.Duration
	// SummaryOutput, if set, receives a startup summary once the
	// application is listening.
	SummaryOutput io.Writer
}

func (o *Options) applyDefaults() {
	if o.ConfigPath == "" {
		o.ConfigPath = config.DefaultDir
	}
	if o.Environment == nil {
		o.Environment = config.FromEnv()
	}
	if o.FileSystem == nil {
		o.FileSystem = config.OSFileSystem{}
	}
	if o.EnvFile == "" {
		o.EnvFile = DefaultEnvFile
	}
	if o.GracefulTimeout <= 0 {
		o.GracefulTimeout = application.DefaultGracefulTimeout
	}
}
