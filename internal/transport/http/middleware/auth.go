package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/jeeva2692001/mindkonnect/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Authenticator verifies a bearer access token.
type Authenticator interface {
	Authenticate(token string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, errorBody{Error: "Authentication credentials were not provided."})
				return
			}
			claims, err := authn.Authenticate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, errorBody{Error: "Given token not valid for any token type"})
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
