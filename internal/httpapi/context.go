package httpapi

import "context"

type contextKey int

const callerIDKey contextKey = iota

// WithCallerID returns a context carrying callerID, the shape the external
// auth middleware is expected to
// inject before a request reaches this package's handlers.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}

// CallerID extracts the caller identity injected by the auth middleware. An
// empty return means no identity was injected; handlers treat that as a 401.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey).(string)
	return id
}
