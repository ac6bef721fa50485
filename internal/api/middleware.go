package api

import (
	"context"
	"net/http"
	"strings"

	"spokd/internal/core"
)

type contextKey string

const (
	loggerContextKey = contextKey("logger")
	userContextKey   = contextKey("user")
)

// userID returns the authenticated account ID; zero on public routes.
func userID(ctx context.Context) int64 {
	id, _ := ctx.Value(userContextKey).(int64)
	return id
}

// authenticate requires a bearer token and stores the account ID in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, "auth", core.ErrUnauthorized)
			return
		}

		id, err := s.Tokens.Verify(token)
		if err != nil {
			respondError(w, "auth", core.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
