// Package observability provides the logging interface used across the client.
// The client never logs on its own authority: callers inject a Logger (or get
// the noop default) so the library composes with whatever logging stack the
// host application runs.
package observability

// Field represents a structured logging field (key-value pair).
type Field struct {
	Key   string
	Value any
}

// Logger is an interface for structured logging.
// Implementations can use any logging library (zerolog, slog, zap, etc.).
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...Field)

	// With returns a new logger with the given fields pre-populated.
	With(fields ...Field) Logger
}

// noopLogger discards all log messages.
type noopLogger struct{}

// NoopLogger returns a logger that does nothing.
// This is the default used when no logger is provided.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(string, ...Field) {}
func (l *noopLogger) Info(string, ...Field)  {}
func (l *noopLogger) Warn(string, ...Field)  {}
func (l *noopLogger) Error(string, ...Field) {}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *noopLogger) With(...Field) Logger { return l }
