// Package calendar provides the pure date and week arithmetic the rota
// engine is built on: civil dates, wall-clock times, ISO-style week
// bucketing and the "every N weeks" cadence rule. No state, no I/O.
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil date at day granularity
// =============================================================================

// Date is a calendar date with no time-of-day and no timezone offset.
// Internally normalized to midnight UTC so comparisons are exact.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns to - from in whole days. Negative if to precedes from.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// TIME OF DAY - Wall-clock hour:minute scoped to an owning date
// =============================================================================

// TimeOfDay is minutes since midnight. It carries no timezone; the owning
// date's business timezone is the caller's concern.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM): %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

// Sub returns t - other in minutes.
func (t TimeOfDay) Sub(other TimeOfDay) int { return int(t) - int(other) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// On anchors the wall-clock time to a date, yielding an instant in UTC.
func (t TimeOfDay) On(d Date) time.Time {
	return d.Time().Add(time.Duration(t) * time.Minute)
}

// =============================================================================
// WEEK ARITHMETIC
// =============================================================================

// WeekBucket maps a date to the first day of its calendar week. All range
// queries in the engine are aligned to these buckets.
func WeekBucket(d Date, weekStart time.Weekday) Date {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDays(-offset)
}

// WeeksBetween returns the number of whole calendar weeks from anchor's
// week to candidate's week. Negative if candidate's week precedes anchor's.
func WeeksBetween(anchor, candidate Date, weekStart time.Weekday) int {
	return DaysBetween(WeekBucket(anchor, weekStart), WeekBucket(candidate, weekStart)) / 7
}

// MatchesCadence reports whether candidate falls on a week realized by an
// "every cadenceWeeks weeks" recurrence anchored at anchor. Cadence 1 means
// every week. This is the sole rule governing week cadence.
func MatchesCadence(candidate, anchor Date, cadenceWeeks int, weekStart time.Weekday) bool {
	if cadenceWeeks < 1 {
		return false
	}
	w := WeeksBetween(anchor, candidate, weekStart) % cadenceWeeks
	return (w+cadenceWeeks)%cadenceWeeks == 0
}

// WeekdaysBetween returns every date in [start, end] falling on the given
// weekday, ascending. Empty when start is after end.
func WeekdaysBetween(start, end Date, wd time.Weekday) []Date {
	if start.After(end) {
		return nil
	}
	first := start.AddDays((int(wd) - int(start.Weekday()) + 7) % 7)
	var dates []Date
	for d := first; !d.After(end); d = d.AddDays(7) {
		dates = append(dates, d)
	}
	return dates
}

// WeekDates returns the seven dates of the week starting at weekStart.
func WeekDates(weekStart Date) []Date {
	dates := make([]Date, 7)
	for i := range dates {
		dates[i] = weekStart.AddDays(i)
	}
	return dates
}
