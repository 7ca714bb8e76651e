// Package logging provides structured logging for the Indevolt client.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the client: discovery datagram traces, RPC round
// trips, and raw byte dumps for protocol debugging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (datagram hex dumps, RPC timings)
//   - Info: Normal operations (probes sent, devices found, window closed)
//   - Warn: Non-fatal issues (unreadable datagrams, transient read errors)
//   - Error: Fatal issues (socket bind failures)
//
// # Silent by Default
//
// Logging is silent unless the INDEVOLT_LOG_LEVEL environment variable is
// set (or a level is passed to Initialize). Library consumers and CLI users
// get no output they did not ask for; discovery in particular swallows its
// failures and this logger is the only place they surface.
//
//	INDEVOLT_LOG_LEVEL=debug indevolt-cfg scan
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Discovery window closed",
//	    zap.Int("devices", len(devices)),
//	    zap.Duration("window", timeout),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
