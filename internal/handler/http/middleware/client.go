package middleware

import (
	"net/http"
	"slices"

	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
)

// RequireClient restricts a route to tokens issued to one of clients.
func RequireClient(clients ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(clients, ClientID(r)) {
				response.HandleError(w, auth.ErrClientNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
