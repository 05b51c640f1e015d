// Package logging is the structured logger shared by the client and the
// server. Call sites pass alternating key and value arguments, as in
//
//	l.Info(ctx, "document saved", "collection", c, "id", id)
//
// Components derive a scoped logger with l.With("module", name).
package logging

import "context"

type Logger interface {
	// Debug output is hidden unless the level is "debug".
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for recoverable conditions, such as a fallback being taken.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
