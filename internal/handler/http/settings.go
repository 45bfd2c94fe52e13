package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ozo-extended/ozo-agent/internal/domain/settings"
	"github.com/ozo-extended/ozo-agent/internal/handler/http/response"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	Configured(w http.ResponseWriter, r *http.Request)
	TestLogin(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.Service
}

func NewSettingsHandler(settingsService settings.Service) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

type configuredResponse struct {
	Configured bool `json:"configured"`
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	response.Success(w, settings.NewView(h.settingsService.Get(r.Context())))
}

// Save implements SettingsHandler.
func (h *settingsHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	var req settings.SaveRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("SaveSettings decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Result(w, h.settingsService.Save(r.Context(), req))
}

// Configured implements SettingsHandler.
func (h *settingsHandlerImpl) Configured(w http.ResponseWriter, r *http.Request) {
	response.Success(w, configuredResponse{Configured: h.settingsService.IsConfigured(r.Context())})
}

// TestLogin implements SettingsHandler.
func (h *settingsHandlerImpl) TestLogin(w http.ResponseWriter, r *http.Request) {
	var req settings.TestLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("TestLogin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	response.Result(w, h.settingsService.TestLogin(r.Context(), req))
}
