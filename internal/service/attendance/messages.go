package attendance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/portal"
)

const (
	MsgBusy          = "Another operation is in progress. Please wait a moment."
	MsgOffline       = "No network connection. Check your internet connection."
	MsgNotConfigured = "USER_ID and PASSWORD are not set. Open settings to configure them."
	MsgLaunchHint    = "Could not start Microsoft Edge. Install Edge (or run \"playwright install msedge\") and try again."
)

// IsDomainState reports whether err is an expected portal state rather than a failure.
func IsDomainState(err error) bool {
	return errors.Is(err, attendance.ErrAlreadyClockedIn) ||
		errors.Is(err, attendance.ErrNotClockedIn) ||
		errors.Is(err, attendance.ErrAlreadyClockedOut) ||
		errors.Is(err, attendance.ErrBusy)
}

// FailureMessage turns an error from a portal action into text for the user.
func FailureMessage(action string, err error) string {
	switch {
	case errors.Is(err, attendance.ErrBusy):
		return MsgBusy
	case errors.Is(err, attendance.ErrOffline):
		return MsgOffline
	case errors.Is(err, attendance.ErrNotConfigured):
		return MsgNotConfigured
	case errors.Is(err, portal.ErrLaunch):
		return MsgLaunchHint
	case errors.Is(err, portal.ErrAuth):
		return fmt.Sprintf("Sign-in failed. Check USER_ID and PASSWORD in settings. (%v)", err)
	case errors.Is(err, attendance.ErrClockNotConfirmed):
		return fmt.Sprintf("%s may have failed: no time appeared on the portal.", action)
	case errors.Is(err, attendance.ErrNotClockedIn):
		return "Not clocked in yet."
	default:
		return fmt.Sprintf("%s failed: %v", action, err)
	}
}

func clockOutMessage(res attendance.ClockResult, autoManHour bool) string {
	if !autoManHour {
		return fmt.Sprintf("Clock-out complete (%s)", res.Time)
	}
	if res.ManHourErr != nil {
		return fmt.Sprintf("Clock-out complete (%s) - man-hour entry failed: %v", res.Time, res.ManHourErr)
	}

	msg := fmt.Sprintf("Clock-out complete & man-hours entered (%s)", res.Time)
	labels := make([]string, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		if a.Label != "" {
			labels = append(labels, a.Label)
		}
	}
	if len(labels) > 0 {
		msg += "\nBreakdown: " + strings.Join(labels, ", ")
	}
	return msg
}
