// Package logging provides structured logging for btscan.
//
// This package wraps a zap logger with convenience functions for common
// logging patterns used throughout the tool. Logging is silent by default so
// that the interactive screen and command output stay clean; set a level
// with --log-level or the BTSCAN_LOG_LEVEL environment variable to enable it.
//
// # Log Levels
//
//   - Debug: Every discovery event, dropped events, websocket pings
//   - Info: Scan started/stopped, new devices, server lifecycle
//   - Warn: Adapter power state unknown, dropped clients
//   - Error: Scan failures, server errors
//
// # Structured Logging
//
//	logging.Info("Device discovered",
//	    zap.String("address", "C4:7C:8D:6A:10:2F"),
//	    zap.Int("rssi", -71),
//	)
//
// # Output
//
// Logs go to stderr unless a file is given, because the interactive screen
// owns stdout:
//
//	if err := logging.InitializeWithOutput("debug", "/tmp/btscan.log"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
