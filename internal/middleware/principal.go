package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalHeader is set by the upstream auth layer after it has verified
// the caller's credentials. This service trusts it; token issuance and
// session handling live outside the core.
const PrincipalHeader = "X-User-ID"

// Principal requires an authenticated user id on the request and stores it
// in the context. Payment callback endpoints are mounted outside this
// middleware so the gateway can reach them without a session.
func Principal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(PrincipalHeader)
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated principal stored by Principal.
func UserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(principalKey).(string)
	return userID, ok && userID != ""
}
