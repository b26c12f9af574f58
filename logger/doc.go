// Package logger provides structured logging for cosy applications using
// zerolog.
//
// It supports JSON and console output, level configuration read from the
// application's "logging" config section, and component-scoped loggers:
//
//	log := logger.WithComponent("bootstrap")
//	log.Info("config layer loaded", logger.Fields("layer", "app.json"))
package logger
