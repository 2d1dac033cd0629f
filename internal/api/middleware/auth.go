package middleware

import (
	"context"
	"errors"
	"net/http"

	"leet2git/internal/common"
	"leet2git/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	ClientIDCtxKey   contextKey = "clientID"
	ClientRoleCtxKey contextKey = "clientRole"
)

// Authenticator rejects requests without a valid client token and puts the
// client id and role into the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		clientID, err := security.GetClientIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		role, err := security.GetRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ClientIDCtxKey, clientID)
		ctx = context.WithValue(ctx, ClientRoleCtxKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ClientIDCtxKey).(string)
	return id, ok
}

func GetClientRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ClientRoleCtxKey).(string)
	return role, ok
}
