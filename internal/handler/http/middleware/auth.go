package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
	"github.com/ozo-extended/ozo-agent/internal/pkg/jwt"
)

// AuthRequired accepts only unrevoked access tokens. It runs after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ClientID returns the client_id claim of the verified token, or "".
func ClientID(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if clientID, ok := claims["client_id"].(string); ok {
		return clientID
	}
	return ""
}
