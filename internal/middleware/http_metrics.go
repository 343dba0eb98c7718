package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns
// to prevent cardinality explosion in metrics. Maps paths like
// /venues/123 to /venues/{id}.
func normalizePath(path string) string {
	staticRoutes := map[string]bool{
		"/":                true,
		"/venues":          true,
		"/events":          true,
		"/rsvps":           true,
		"/feed":            true,
		"/map":             true,
		"/ticketed-events": true,
		"/reputation/me":   true,
		"/health":          true,
		"/ready":           true,
		"/metrics":         true,
	}

	if staticRoutes[path] {
		return path
	}

	// /venues/{id}, /venues/{id}/crowd, /venues/{id}/rate,
	// /venues/{id}/checkins, /venues/{id}/chat, /venues/{id}/chat/history
	if strings.HasPrefix(path, "/venues/") {
		parts := strings.Split(path, "/")
		if len(parts) >= 3 && parts[2] != "" {
			switch {
			case len(parts) == 3:
				return "/venues/{id}"
			case len(parts) == 4:
				switch parts[3] {
				case "crowd", "rate", "checkins", "chat":
					return "/venues/{id}/" + parts[3]
				}
			case len(parts) == 5 && parts[3] == "chat" && parts[4] == "history":
				return "/venues/{id}/chat/history"
			}
		}
	}

	// /events/{id}, /events/{id}/rsvp
	if strings.HasPrefix(path, "/events/") {
		parts := strings.Split(path, "/")
		if len(parts) == 3 && parts[2] != "" {
			return "/events/{id}"
		}
		if len(parts) == 4 && parts[3] == "rsvp" {
			return "/events/{id}/rsvp"
		}
	}

	// /reputation/{user_id}
	if strings.HasPrefix(path, "/reputation/") {
		parts := strings.Split(path, "/")
		if len(parts) == 3 && parts[2] != "" {
			return "/reputation/{id}"
		}
	}

	// Unknown patterns pass through as-is so new routes still show up.
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status
// code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics is a middleware that records request duration, sizes,
// and counts. Health check endpoints are excluded to keep the series
// clean.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			requestSize := int64(0)
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil {
					requestSize = size
				}
			}

			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				requestSize,
				mrw.size,
			)
		})
	}
}
