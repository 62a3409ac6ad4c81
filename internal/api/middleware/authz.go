package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/drtrack/internal/api/response"
	"github.com/edvin/drtrack/internal/model"
)

// GetIdentity extracts the APIKeyIdentity from the request context.
func GetIdentity(ctx context.Context) *APIKeyIdentity {
	identity, _ := ctx.Value(APIKeyIdentityKey).(*APIKeyIdentity)
	return identity
}

// CanMutate reports whether the identity may change lifecycle state.
func CanMutate(identity *APIKeyIdentity) bool {
	return identity != nil && identity.Role == model.RoleOperator
}

// RequireOperator rejects non-read requests from keys without the operator role.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !CanMutate(GetIdentity(r.Context())) {
			response.WriteError(w, http.StatusForbidden, "operator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
