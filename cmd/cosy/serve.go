package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/bootstrap"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/providers/telemetry"
)

type serveFlags struct {
	configDir       string
	env             string
	envFile         string
	envPrefix       string
	formats         []string
	gracefulTimeout time.Duration
	quiet           bool
}

func (f *serveFlags) options() bootstrap.Options {
	opts := bootstrap.Options{
		ConfigPath:      f.configDir,
		Formats:         f.formats,
		EnvFile:         f.envFile,
		EnvPrefix:       f.envPrefix,
		GracefulTimeout: f.gracefulTimeout,
		Providers:       []application.Factory{telemetry.New},
	}
	if f.env != "" {
		opts.Environment = config.StaticEnvironment(f.env)
	}
	if !f.quiet {
		opts.SummaryOutput = os.Stdout
	}
	return opts
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load configuration, boot providers and serve until interrupted",
		Example: `  cosy serve
  cosy serve --config-dir ./deploy/config --env production
  APP_ENV=staging cosy serve --format yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, f.options())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configDir, "config-dir", "c", config.DefaultDir, "Directory holding the configuration layers")
	flags.StringVarP(&f.env, "env", "e", "", "Environment name (defaults to $APP_ENV, then development)")
	flags.StringVar(&f.envFile, "env-file", bootstrap.DefaultEnvFile, `Dotenv file loaded before resolving the environment ("-" disables)`)
	flags.StringVar(&f.envPrefix, "env-prefix", "", "Overlay variables named <PREFIX>_<PATH> on the configuration")
	flags.StringSliceVarP(&f.formats, "format", "f", []string{config.FormatJSON}, "Layer file formats, in load order")
	flags.DurationVar(&f.gracefulTimeout, "graceful-timeout", application.DefaultGracefulTimeout, "Maximum shutdown duration")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Do not print the startup summary")
	return cmd
}

func serve(ctx context.Context, opts bootstrap.Options) error {
	app, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return err
	}
	return app.Wait(ctx)
}
