package attendance

import (
	"github.com/ozo-extended/ozo-agent/internal/pkg/validator"
)

// Result is the outcome of a user-facing action. Message is for humans only.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ok builds a successful Result.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds an unsuccessful Result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

type WorkInfoResponse struct {
	WorkInfo
	IsProcessing bool `json:"is_processing"`
}

type ClockOutRequest struct {
	// AutoManHour falls back to the saved AUTO_MAN_HOUR setting when nil.
	AutoManHour *bool `json:"auto_man_hour"`
	// Force re-clicks clock-out when already clocked out. Defaults to true.
	Force *bool `json:"force"`
}

type HistoryFilter struct {
	Limit int `json:"limit"`
}

const (
	DefaultHistoryLimit = 31
	MaxHistoryLimit     = 500
)

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit == 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit < 1 || f.Limit > MaxHistoryLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 500",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
