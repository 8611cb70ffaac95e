// File: internal/middleware/access.go
package middleware

import (
	"encoding/json"
	"net/http"
)

// RequireUser rejects requests that carry no authenticated user.
// It MUST be used AFTER OptionalJWT.
func RequireUser(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); !ok {
				logger.Warn("[AccessMiddleware] unauthenticated request", "path", r.URL.Path)
				writeAccessError(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOperator admits only the listed token subjects. An empty list
// closes the route to everyone. It MUST be used AFTER OptionalJWT.
func RequireOperator(operatorIDs []string, logger Logger) func(http.Handler) http.Handler {
	operators := make(map[string]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		operators[id] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				logger.Warn("[AccessMiddleware] unauthenticated operator request", "path", r.URL.Path)
				writeAccessError(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if _, ok := operators[userID]; !ok {
				logger.Warn("[AccessMiddleware] FORBIDDEN: non-operator on operator route", "user_id", userID, "path", r.URL.Path)
				writeAccessError(w, "Forbidden", http.StatusForbidden)
				return
			}
			logger.Info("[AccessMiddleware] operator access granted", "user_id", userID, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func writeAccessError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": msg})
}
