package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const UserCtxKey = contextKey("user_id")

// TokenValidator resolves an access token to the user it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// Auth rejects requests without a valid access token. The Authorization
// header carries the raw token, without a scheme prefix.
func Auth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			userID, err := v.ValidateToken(token)
			if err != nil {
				logg.Debug("middleware", "token rejected: "+err.Error())
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id set by Auth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserCtxKey).(int64)
	return id, ok
}
