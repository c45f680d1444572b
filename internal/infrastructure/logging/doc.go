// Package logging provides structured logging for Rover Core.
//
// It wraps Go's standard log/slog package so every component logs with
// the same default fields (service, version) and level filtering. JSON
// output is the default for production; text output is available for
// development.
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting server", "port", 5500)
//	logger.Error("write failed", "error", err)
//
// Never log credentials or tokens.
package logging
