package settings

import "strings"

// Settings is the persisted user settings document.
type Settings struct {
	UserID       string `json:"USER_ID"`
	Password     string `json:"PASSWORD"`
	HeadlessMode bool   `json:"HEADLESS_MODE"`
	AutoLaunch   bool   `json:"AUTO_LAUNCH"`
	AutoClockIn  bool   `json:"AUTO_CLOCK_IN"`
	AutoManHour  bool   `json:"AUTO_MAN_HOUR"`
}

// Defaults returns the settings used when nothing has been saved.
func Defaults() Settings {
	return Settings{
		HeadlessMode: true,
		AutoLaunch:   true,
		AutoClockIn:  false,
		AutoManHour:  false,
	}
}

// IsConfigured reports whether both credentials are present.
func (s Settings) IsConfigured() bool {
	return strings.TrimSpace(s.UserID) != "" && strings.TrimSpace(s.Password) != ""
}
