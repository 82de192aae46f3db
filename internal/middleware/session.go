package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey string

const SessionTokenKey contextKey = "session_token"

// SessionToken middleware extracts the bearer token from the Authorization header
func SessionToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			log.Debug().Str("path", r.URL.Path).Msg("Missing bearer token")
			w.Header().Set("WWW-Authenticate", `Bearer realm="barmaster"`)
			http.Error(w, "Authorization bearer token is required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SessionTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionToken extracts the session token from context
func GetSessionToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(SessionTokenKey).(string)
	return token, ok && token != ""
}
