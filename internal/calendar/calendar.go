// Package calendar answers working-day questions for print scheduling.
// A working day is a weekday that is not a bank holiday.
package calendar

import (
	"context"
	"time"
)

// HolidaySource reports whether a calendar date is a bank holiday.
// Implementations should treat the date's year/month/day only.
type HolidaySource interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

type Calendar struct {
	holidays HolidaySource
}

func New(holidays HolidaySource) *Calendar {
	return &Calendar{holidays: holidays}
}

// IsWorkingDay reports whether date is a weekday and not a bank holiday.
// Errors from the holiday source propagate so callers never act on a
// guessed calendar.
func (c *Calendar) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}
	holiday, err := c.holidays.IsHoliday(ctx, date)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// OffsetWorkingDays walks from date until n working days have passed and
// returns the resulting date at the same clock time. Negative n walks
// backwards, positive n forwards; zero returns date unchanged.
func (c *Calendar) OffsetWorkingDays(ctx context.Context, date time.Time, n int) (time.Time, error) {
	step := 1
	remaining := n
	if n < 0 {
		step = -1
		remaining = -n
	}
	current := date
	for remaining > 0 {
		current = current.AddDate(0, 0, step)
		working, err := c.IsWorkingDay(ctx, current)
		if err != nil {
			return time.Time{}, err
		}
		if working {
			remaining--
		}
	}
	return current, nil
}
