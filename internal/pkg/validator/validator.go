package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

var clockTimeRegex = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// IsClockTime reports whether s looks like an "H:MM" or "HH:MM" wall-clock value
// with hours below 24 and minutes below 60.
func IsClockTime(s string) bool {
	if !clockTimeRegex.MatchString(s) {
		return false
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h < 24 && m < 60
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// ParseDateList splits a comma separated list of YYYY-MM-DD dates, skipping blanks.
// The first malformed entry is reported through the returned error list.
func ParseDateList(value string) ([]time.Time, ValidationErrors) {
	var (
		dates []time.Time
		errs  ValidationErrors
	)
	for i, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		date, ok := IsValidDate(raw)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   "dates[" + strconv.Itoa(i) + "]",
				Message: "date must be in YYYY-MM-DD format",
			})
			continue
		}
		dates = append(dates, date)
	}
	return dates, errs
}
