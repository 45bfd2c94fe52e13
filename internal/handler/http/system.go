package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ozo-extended/ozo-agent/internal/domain/notification"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
	"github.com/ozo-extended/ozo-agent/internal/pkg/netcheck"
)

type SystemHandler interface {
	Network(w http.ResponseWriter, r *http.Request)
	Visibility(w http.ResponseWriter, r *http.Request)
}

type systemHandlerImpl struct {
	network      netcheck.Checker
	notifService notification.Service
}

func NewSystemHandler(network netcheck.Checker, notifService notification.Service) SystemHandler {
	return &systemHandlerImpl{network: network, notifService: notifService}
}

type networkResponse struct {
	Online bool `json:"online"`
}

// Network implements SystemHandler.
func (h *systemHandlerImpl) Network(w http.ResponseWriter, r *http.Request) {
	response.Success(w, networkResponse{Online: h.network.Online(r.Context())})
}

// Visibility implements SystemHandler.
func (h *systemHandlerImpl) Visibility(w http.ResponseWriter, r *http.Request) {
	var req notification.VisibilityRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Visibility decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	h.notifService.SetUIVisible(req.Visible)
	slog.Debug("UI visibility changed", "visible", req.Visible)
	response.Success(w, req)
}
