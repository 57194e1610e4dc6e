// auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys
type contextKey string

const userIDKey contextKey = "user_id"

// UserID extracts the caller's user ID from the request context.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// Identity resolves the caller's identity and threads it through the
// request context so every downstream call receives it explicitly.
// Identity comes from the X-User-ID header; absent that, the configured
// default user is used so single-tenant deployments work out of the box.
func Identity(defaultUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if userID == "" {
				userID = defaultUserID
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
