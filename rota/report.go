package rota

import (
	"github.com/shopspring/decimal"
	"github.com/warp/rota-engine/calendar"
)

// HoursSummary totals one employee's week: hours scheduled on shifts, hours
// blocked out as time-off, and the net of the two.
type HoursSummary struct {
	EmployeeID     EmployeeID
	WeekStart      calendar.Date
	ShiftCount     int
	TimeOffCount   int
	ScheduledHours decimal.Decimal
	TimeOffHours   decimal.Decimal
	NetHours       decimal.Decimal
}

// SummarizeHours totals durations over the given instances. Durations are
// exact in minutes; hours are reported to two decimal places.
func SummarizeHours(employeeID EmployeeID, weekStart calendar.Date, shifts []ShiftInstance, timeOffs []TimeOffInstance) HoursSummary {
	var shiftMinutes, timeOffMinutes int64
	for _, s := range shifts {
		shiftMinutes += int64(s.DurationMinutes())
	}
	for _, t := range timeOffs {
		timeOffMinutes += int64(t.DurationMinutes())
	}

	scheduled := minutesToHours(shiftMinutes)
	off := minutesToHours(timeOffMinutes)

	return HoursSummary{
		EmployeeID:     employeeID,
		WeekStart:      weekStart,
		ShiftCount:     len(shifts),
		TimeOffCount:   len(timeOffs),
		ScheduledHours: scheduled,
		TimeOffHours:   off,
		NetHours:       scheduled.Sub(off),
	}
}

var sixty = decimal.NewFromInt(60)

func minutesToHours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).DivRound(sixty, 2)
}
