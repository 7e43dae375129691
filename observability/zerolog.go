package observability

import "github.com/rs/zerolog"

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	l zerolog.Logger
}

// NewZerolog returns a Logger backed by the given zerolog.Logger.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewZerolog(l zerolog.Logger) Logger {
	return &zerologLogger{l: l}
}

func (z *zerologLogger) Debug(msg string, fields ...Field) { emit(z.l.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...Field)  { emit(z.l.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...Field)  { emit(z.l.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...Field) { emit(z.l.Error(), msg, fields) }

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (z *zerologLogger) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zerologLogger{l: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}
