// Package logging defines the structured observability hook injected into the
// client, session, and analysis layers. Implementations can wrap slog, zap,
// zerolog, etc. Auth events must be logged with redacted payloads: event
// names, usernames, and request IDs are fine; tokens and passwords are not.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "login succeeded", "username", name, "request_id", id)
type Logger interface {
	// Debug logs low-level flow detail (request/retry tracing).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
