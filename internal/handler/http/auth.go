package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/middleware"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
)

type AuthHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

// Token implements AuthHandler.
func (a *AuthHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Token decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := a.authService.IssueToken(r.Context(), req)
	if err != nil {
		slog.Warn("Token request rejected", "client_id", req.ClientID, "remote_addr", r.RemoteAddr, "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Access token issued", "client_id", req.ClientID)
	response.Success(w, resp)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.authService.Logout(r.Context(), jwtauth.TokenFromHeader(r)); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Logged out", nil)
}

// SSEToken implements AuthHandler.
func (a *AuthHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	resp, err := a.authService.IssueSSEToken(r.Context(), middleware.ClientID(r))
	if err != nil {
		slog.Error("SSE token error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}
