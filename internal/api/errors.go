// Package api provides the HTTP handlers and standardized error
// handling for the nightlife API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/onnwee/nightpulse/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeAuthFailed indicates authentication failure.
	ErrCodeAuthFailed = "auth_failed"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeRateLimited indicates rate limit exceeded.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeInvalidRange indicates a numeric field outside its valid
	// range (coordinates, radius, crowd level, rating score).
	ErrCodeInvalidRange = "invalid_range"

	// ErrCodeInvalidTimeRange indicates an event window where start is
	// not before end.
	ErrCodeInvalidTimeRange = "invalid_time_range"

	// ErrCodeConflict indicates the resource changed underneath the
	// request; the operation was a no-op and is safe to retry.
	ErrCodeConflict = "conflict"

	// ErrCodeNoActiveCheckIn indicates a check-out with no matching
	// active check-in.
	ErrCodeNoActiveCheckIn = "no_active_checkin"

	// ErrCodeUpstreamUnavailable indicates an external provider
	// failure on a surface that cannot degrade.
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
)

// ErrorResponse is the standard error response format. All API errors
// return JSON shaped {"error": {"code": "...", "message": "..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response and propagates
// the error code to the logging middleware via the response writer.
//
// Example:
//
//	ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
//	api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "Venue not found")
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	middleware.UpdateResponseContext(w, ctx)

	errResp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(errResp)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, ctx context.Context, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal response", "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// fail is the common error path: sets the code on the context and
// writes the response.
func fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, status, code, message)
}

// requireUser extracts the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		fail(w, r, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return "", false
	}
	return userID, true
}

// StatusCodeMapping returns the recommended HTTP status code for
// common error codes.
func StatusCodeMapping(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidRange, ErrCodeInvalidTimeRange:
		return http.StatusBadRequest
	case ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case ErrCodeNotFound, ErrCodeNoActiveCheckIn:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
