package httpapi

import (
	"net/http"
	"strings"

	"github.com/listly-app/shopping-list-api/internal/platform/auth/tokens"
)

// NewAuthMiddleware enforces Authorization: Bearer <JWT> for protected
// endpoints. On success the verified claims are stored in request context.
//
// Every failure is the same 401: a missing header, a malformed one, a bad
// signature and an expired token are indistinguishable to the caller.
func NewAuthMiddleware(v *tokens.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or malformed Authorization header")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

			claims, err := v.Verify(raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid credential")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
