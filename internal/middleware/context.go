// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"context"
	"net/http"
)

// userIDKey is the context key for the authenticated user ID.
type userIDKey struct{}

// errorCodeKey is the context key for error code.
type errorCodeKey struct{}

// SetUserID stores the authenticated user ID in the context.
// Called by the auth middleware after validating the token.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves the user ID from context. Returns empty string
// if not present.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// SetErrorCode stores an error code in the context. Handlers call this
// when returning error responses so the logging middleware can attach
// the code to the request log line.
func SetErrorCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, errorCodeKey{}, code)
}

// GetErrorCode retrieves the error code from context. Returns empty
// string if not present.
func GetErrorCode(ctx context.Context) string {
	if code, ok := ctx.Value(errorCodeKey{}).(string); ok {
		return code
	}
	return ""
}

// contextCarrier is implemented by response writers that can carry an
// updated context back out to wrapping middleware. The handler's
// context mutations (like SetErrorCode) happen after the middleware
// captured r.Context(), so the writer is the channel back.
type contextCarrier interface {
	setContext(ctx context.Context)
}

// UpdateResponseContext pushes an updated context into the response
// writer when the wrapping middleware supports it. No-op otherwise.
func UpdateResponseContext(w http.ResponseWriter, ctx context.Context) {
	if c, ok := w.(contextCarrier); ok {
		c.setContext(ctx)
	}
}
