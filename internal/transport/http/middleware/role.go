package middleware

import (
	"net/http"

	"github.com/library-access-api/internal/domain"
)

// RequireRole allows the request through only when the bearer role is one of
// allowed. It is a routing shortcut; the services repeat the check.
func RequireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, "unauthorized")
				return
			}
			for _, role := range allowed {
				if domain.Role(claims.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, domain.KindUnauthorized, "forbidden")
		})
	}
}
