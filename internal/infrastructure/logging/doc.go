// Package logging provides structured logging for the Gray Logic Edge Agent.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the agent.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, app, version) on all log entries
//   - Level-based filtering (trace, debug, info, warn, error, critical)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # trace, debug, info, warn, error, critical
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
// The logger is an explicit value built once in main and injected into each
// component; there is no package-level logger state.
//
//	logger := logging.New(cfg.Logging, cfg.App.Name, "1.0.0")
//	logger.Info("registered", "points", 12)
//	logger.Critical("bootstrap aborted", "error", err)
//
// # Security
//
// Never log server credentials, broker passwords or InfluxDB tokens.
package logging
