package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/OnlyTachi/personal-finance-manager/internal/api/response"
)

type contextKey string

// usernameKey carries the authenticated username through the request context.
const usernameKey contextKey = "username"

// Authenticator resolves a session token to its username.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// NewSessionAuth returns a middleware that requires a valid bearer session
// token and stores the resolved username in the request context.
func NewSessionAuth(sessions Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				response.RespondError(w, http.StatusUnauthorized, "missing bearer token", "")
				return
			}

			username, err := sessions.Authenticate(token)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "invalid session", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username returns the authenticated username stored by NewSessionAuth, or
// an empty string on unauthenticated requests.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}
