package settings

import (
	"strings"

	"github.com/ozo-extended/ozo-agent/internal/pkg/validator"
)

// SaveRequest replaces the whole settings document. The UI never sees the
// stored password, so KEEP_PASSWORD carries it over instead of an empty PASSWORD.
type SaveRequest struct {
	UserID       string `json:"USER_ID"`
	Password     string `json:"PASSWORD"`
	KeepPassword bool   `json:"KEEP_PASSWORD"`
	HeadlessMode *bool  `json:"HEADLESS_MODE"`
	AutoLaunch   *bool  `json:"AUTO_LAUNCH"`
	AutoClockIn  *bool  `json:"AUTO_CLOCK_IN"`
	AutoManHour  *bool  `json:"AUTO_MAN_HOUR"`
}

func (r *SaveRequest) Validate() error {
	var errs validator.ValidationErrors

	r.UserID = strings.TrimSpace(r.UserID)
	if r.KeepPassword && r.Password != "" {
		errs = append(errs, validator.ValidationError{
			Field:   "PASSWORD",
			Message: "PASSWORD must be empty when KEEP_PASSWORD is set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToSettings fills omitted flags from the defaults.
func (r SaveRequest) ToSettings() Settings {
	s := Defaults()
	s.UserID = r.UserID
	s.Password = r.Password
	if r.HeadlessMode != nil {
		s.HeadlessMode = *r.HeadlessMode
	}
	if r.AutoLaunch != nil {
		s.AutoLaunch = *r.AutoLaunch
	}
	if r.AutoClockIn != nil {
		s.AutoClockIn = *r.AutoClockIn
	}
	if r.AutoManHour != nil {
		s.AutoManHour = *r.AutoManHour
	}
	return s
}

type TestLoginRequest struct {
	UserID   string `json:"USER_ID"`
	Password string `json:"PASSWORD"`
}

func (r *TestLoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "USER_ID", Message: "USER_ID is required"})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{Field: "PASSWORD", Message: "PASSWORD is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// View is the settings document as returned to the UI; the password is never echoed.
type View struct {
	UserID       string `json:"USER_ID"`
	HasPassword  bool   `json:"HAS_PASSWORD"`
	HeadlessMode bool   `json:"HEADLESS_MODE"`
	AutoLaunch   bool   `json:"AUTO_LAUNCH"`
	AutoClockIn  bool   `json:"AUTO_CLOCK_IN"`
	AutoManHour  bool   `json:"AUTO_MAN_HOUR"`
}

func NewView(s Settings) View {
	return View{
		UserID:       s.UserID,
		HasPassword:  s.Password != "",
		HeadlessMode: s.HeadlessMode,
		AutoLaunch:   s.AutoLaunch,
		AutoClockIn:  s.AutoClockIn,
		AutoManHour:  s.AutoManHour,
	}
}
