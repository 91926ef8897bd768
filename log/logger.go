package log

import "context"

// Logger is the structured logging interface used across services. The
// context is threaded through so adapters can attach request-scoped data
// such as trace identifiers.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	// Fatal logs and terminates the process. Startup wiring only.
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	// With returns a new logger with the given fields bound to every event.
	With(fields map[string]interface{}) Logger
}
