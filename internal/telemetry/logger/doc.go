// Package logger provides structured logging for taskdeck.
//
// This package wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the process default
//   - context.go: Context-aware logging with request IDs
//   - redact.go: Sensitive data redaction
//
// Credentials never reach the output: attributes whose key names a
// password, token or authorization header are masked, as are values that
// look like bearer credentials or JWTs.
package logger
