package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/drtrack/internal/api/response"
	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/model"
)

type contextKey string

const APIKeyIdentityKey contextKey = "api_key_identity"

// APIKeyIdentity holds the authenticated key's ID, name, and role.
type APIKeyIdentity struct {
	ID   string
	Name string
	Role string
}

// KeyAuthenticator resolves a raw API key to its stored record.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error)
}

// Auth returns a middleware that validates the X-API-Key header.
func Auth(keys KeyAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			key, err := keys.Authenticate(r.Context(), raw)
			if errors.Is(err, core.ErrNotFound) {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("authenticate API key")
				response.WriteError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}

			identity := &APIKeyIdentity{ID: key.ID, Name: key.Name, Role: key.Role}
			ctx := context.WithValue(r.Context(), APIKeyIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
