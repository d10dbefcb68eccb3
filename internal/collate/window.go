// Package collate turns the day's eligible letter PDFs into bounded
// archive batches and hands them to the print provider.
package collate

import (
	"fmt"
	"time"

	"github.com/govnotify/letterpipe/internal/config"
)

// Window is the daily local-time band during which a collation run may
// execute, plus the print-run cutoff used to bound letter eligibility.
// All comparisons happen in the configured civil timezone so the window
// tracks daylight saving shifts.
type Window struct {
	loc *time.Location

	startHour, startMinute int
	endHour, endMinute     int

	cutoffHour, cutoffMinute int
}

func NewWindow(cfg config.LettersConfig) (*Window, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Window{
		loc:          loc,
		startHour:    cfg.WindowStartHour,
		startMinute:  cfg.WindowStartMinute,
		endHour:      cfg.WindowEndHour,
		endMinute:    cfg.WindowEndMinute,
		cutoffHour:   cfg.CutoffHour,
		cutoffMinute: cfg.CutoffMinute,
	}, nil
}

// Contains reports whether the instant falls inside the window, inclusive
// at both ends.
func (w *Window) Contains(now time.Time) bool {
	local := now.In(w.loc)
	minute := local.Hour()*60 + local.Minute()
	return minute >= w.startHour*60+w.startMinute && minute <= w.endHour*60+w.endMinute
}

// CutoffUTC returns the print-run cutoff for the day containing now,
// expressed in UTC.
func (w *Window) CutoffUTC(now time.Time) time.Time {
	local := now.In(w.loc)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), w.cutoffHour, w.cutoffMinute, 0, 0, w.loc)
	return cutoff.UTC()
}

// RunDate returns the calendar date of the run in local civil time.
func (w *Window) RunDate(now time.Time) time.Time {
	local := now.In(w.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc)
}
