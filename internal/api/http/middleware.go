package http

import (
	"context"
	"net/http"
	"strings"

	"librental-backend/internal/apperr"
	"librental-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates the bearer token and injects the claims into
// the request context.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "Authorization token is not provided"})
				return
			}

			token := header
			if len(token) > 7 && strings.EqualFold(token[0:7], "BEARER ") {
				token = token[7:]
			}

			claims, err := tokens.ValidateToken(token)
			if err == nil {
				err = claims.RequireType(security.TokenTypeAccess)
			}
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "Invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerClaims extracts the authenticated caller from the context.
func callerClaims(r *http.Request) (*security.UserClaims, error) {
	claims, ok := r.Context().Value(claimsKey).(*security.UserClaims)
	if !ok || claims == nil {
		return nil, apperr.Forbidden("Authentication required")
	}
	return claims, nil
}
