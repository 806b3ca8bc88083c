package middleware

import (
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// UserContext tags the request logger with the authenticated caller. It runs after
// the auth middleware and is a no-op for anonymous requests.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
