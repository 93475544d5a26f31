package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/models"
	"github.com/MustaphaBoukhit/dj-Chat-Channels/internal/token"
)

type contextKey string

const userContextKey contextKey = "user"

// Identity resolves the caller's identity from a signed token, either a
// "token" query parameter (the form browsers can pass on a WebSocket URL)
// or an Authorization bearer header. Requests without a valid token proceed
// as anonymous; nothing downstream of this middleware authenticates.
func Identity(signer *token.Signer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := models.Anonymous()

			if raw := bearerToken(r); raw != "" {
				if username, err := signer.Validate(raw); err == nil && username != "" {
					user = &models.User{Username: username, Authenticated: true}
				}
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the resolved identity, or an anonymous one if
// the middleware did not run.
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey).(*models.User); ok {
		return user
	}
	return models.Anonymous()
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
