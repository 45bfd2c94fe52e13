// Package holiday decides whether a date is a non-working day for auto clock-in.
package holiday

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
)

// Calendar reports holidays.
type Calendar interface {
	IsHoliday(t time.Time) bool
}

// BusinessCalendar combines a national holiday set with explicitly configured dates.
type BusinessCalendar struct {
	cal   *cal.BusinessCalendar
	extra map[string]struct{}
}

// New builds a calendar. region is "jp" for Japanese public holidays or "none".
// extra dates are always treated as holidays.
func New(region string, extra []time.Time) *BusinessCalendar {
	c := cal.NewBusinessCalendar()
	if region == "jp" {
		c.AddHoliday(jp.Holidays...)
	}

	b := &BusinessCalendar{cal: c, extra: make(map[string]struct{}, len(extra))}
	for _, d := range extra {
		b.extra[d.Format(time.DateOnly)] = struct{}{}
	}
	return b
}

// IsHoliday reports whether t falls on a configured date or an observed public holiday.
func (b *BusinessCalendar) IsHoliday(t time.Time) bool {
	if _, ok := b.extra[t.Format(time.DateOnly)]; ok {
		return true
	}
	actual, observed, _ := b.cal.IsHoliday(t)
	return actual || observed
}

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
