package middleware

import (
	"net/http"
	"strings"
)

// TokenVerifier validates a bearer token and returns the user ID it
// was issued to.
type TokenVerifier interface {
	VerifyAccessToken(token string) (userID string, err error)
}

// Authenticate resolves the Authorization header into a user ID on the
// request context. Requests without a token pass through anonymous;
// handlers that require identity reject those themselves. A present
// but invalid token is a hard 401.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Invalid Authorization header", http.StatusUnauthorized)
				return
			}

			userID, err := verifier.VerifyAccessToken(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
		})
	}
}
