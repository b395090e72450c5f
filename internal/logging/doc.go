// Package logging provides structured logging for gecko-decode.
//
// This package wraps a global zap logger with convenience functions for the
// few things the tool logs: which catalog a decode ran against, how the
// decode went, and the raw bytes that were captured. Field-level diagnostics
// go through diag.LogSink, which takes the logger from GetLogger.
//
// # Log Levels
//
//   - Debug: Raw input bytes, per-field decode events
//   - Info: Catalog selection, decode summaries, config changes
//   - Warn: Enum values out of range, fields cut off by the buffer end
//   - Error: Unreadable input or catalogs
//
// # Configuration
//
// Logging is silent unless a level is given, either with --log-level or the
// GECKO_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Output Format
//
// Logs go to stderr in console format so they never mix with decoded output
// on stdout:
//
//	2026-03-02T10:30:45.123+0000  INFO  Frame decoded  {"revision": "inyt-log-65", "length": 366, "consumed": 281, "decoded": 27, "skipped": 0}
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. SetLogger is not; call
// it before any goroutines start logging.
package logging
