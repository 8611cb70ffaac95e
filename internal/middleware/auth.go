// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iyunix/go-lifexia/internal/auth"
)

const authCookie = "auth_token"

// OptionalJWT attaches the token subject as the user id when a bearer
// token or auth_token cookie is present. Requests without a token pass
// through anonymously; an invalid token is rejected with 401.
func OptionalJWT(secret []byte, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || len(secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := auth.ValidateToken(token, secret)
			if err != nil {
				logger.Warn("[AuthMiddleware] invalid token", "path", r.URL.Path, "error", err)
				writeAccessError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}
