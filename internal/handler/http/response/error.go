package response

import (
	"errors"
	"net/http"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/domain/auth"
	"github.com/ozo-extended/ozo-agent/internal/pkg/validator"
	"github.com/ozo-extended/ozo-agent/internal/portal"
	attendanceService "github.com/ozo-extended/ozo-agent/internal/service/attendance"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid client secret")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrClientNotAllowed):
		Forbidden(w, "This client may not use this endpoint")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrBusy):
		Conflict(w, attendanceService.MsgBusy)
	case errors.Is(err, attendance.ErrNotConfigured):
		PreconditionFailed(w, attendanceService.MsgNotConfigured)
	case errors.Is(err, attendance.ErrOffline):
		ServiceUnavailable(w, attendanceService.MsgOffline)

	// Portal errors
	case errors.Is(err, portal.ErrLaunch):
		ServiceUnavailable(w, attendanceService.MsgLaunchHint)
	case errors.Is(err, portal.ErrAuth):
		BadGateway(w, "Sign-in to the attendance portal failed")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
