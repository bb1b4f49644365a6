package middleware

import (
	"context"
	"net/http"

	"github.com/eventloka/server/internal/api/problem"
	"github.com/eventloka/server/internal/auth"
)

type claimsKey string

const authClaimsKey claimsKey = "authClaims"

// Claims returns the authenticated claims stored by JWTAuth, or nil if
// the request was not authenticated.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(authClaimsKey).(*auth.Claims)
	return claims
}

// JWTAuth validates the bearer token and stores the claims in the
// request context. When roles are given, the token's role must match
// one of them.
func JWTAuth(tokens *auth.JWTManager, env string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", err, env)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Invalid or expired token", err, env)
				return
			}

			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
					"Insufficient permissions", problem.ErrForbidden, env)
				return
			}

			ctx := context.WithValue(r.Context(), authClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
