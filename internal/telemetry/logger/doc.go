// Package logger provides structured logging for rest0.
//
// It builds log/slog loggers with:
//
//   - JSON (default) or text output
//   - a process-wide level that can be changed at runtime
//   - redaction of secret-looking attributes and of credentials embedded in
//     URLs, such as the user info of a configuration endpoint
//   - context helpers that carry a logger and the request id
package logger
