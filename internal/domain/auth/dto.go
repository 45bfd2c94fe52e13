package auth

import "github.com/ozo-extended/ozo-agent/internal/pkg/validator"

type TokenRequest struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

// Local UI clients.
const (
	ClientTray     = "tray"
	ClientPopup    = "popup"
	ClientSettings = "settings"
)

var clientIDs = []string{ClientTray, ClientPopup, ClientSettings}

func (r *TokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ClientID) {
		r.ClientID = ClientPopup
	}
	if !validator.IsInSlice(r.ClientID, clientIDs) {
		errs = append(errs, validator.ValidationError{
			Field:   "client_id",
			Message: "client_id must be one of tray, popup, settings",
		})
	}
	if validator.IsEmpty(r.Secret) {
		errs = append(errs, validator.ValidationError{
			Field:   "secret",
			Message: "secret is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
